package cli

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"strings"

	"live-commerce/internal/catalog"
	"live-commerce/internal/resource"
)

// idArg splits the leading record id off a subcommand's arguments.
func idArg(usage string, args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("%w: %s", ErrUsage, usage)
	}
	return args[0], args[1:], nil
}

func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// query copies the non-empty string flags into url values.
func query(values map[string]*string) url.Values {
	q := url.Values{}
	for k, v := range values {
		if s := strings.TrimSpace(*v); s != "" {
			q.Set(k, s)
		}
	}
	return q
}

func subcommand(family string, args []string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: %s list|get|create|delete", ErrUsage, family)
	}
	return args[0], args[1:], nil
}

type productFlags struct {
	in    catalog.ProductInput
	image string
}

func (a *App) productFlagSet(name string, pf *productFlags) *flag.FlagSet {
	fs := a.flags(name)
	fs.StringVar(&pf.in.Name, "name", "", "product name")
	fs.StringVar(&pf.in.Description, "description", "", "description")
	fs.Float64Var(&pf.in.Price, "price", 0, "price")
	fs.IntVar(&pf.in.Stock, "stock", 0, "units in stock")
	fs.StringVar(&pf.in.Category, "category", "", "category")
	fs.StringVar(&pf.in.SKU, "sku", "", "stock keeping unit")
	fs.BoolVar(&pf.in.Live, "live", false, "show the product in live streams")
	fs.StringVar(&pf.image, "image", "", "path to a product image")
	return fs
}

func (pf productFlags) file() (*resource.File, error) {
	if pf.image == "" {
		return nil, nil
	}
	return resource.OpenFile(pf.image)
}

// overlay applies the flags the user set onto base.
func (pf productFlags) overlay(base catalog.ProductInput, set map[string]bool) catalog.ProductInput {
	if set["name"] {
		base.Name = pf.in.Name
	}
	if set["description"] {
		base.Description = pf.in.Description
	}
	if set["price"] {
		base.Price = pf.in.Price
	}
	if set["stock"] {
		base.Stock = pf.in.Stock
	}
	if set["category"] {
		base.Category = pf.in.Category
	}
	if set["sku"] {
		base.SKU = pf.in.SKU
	}
	if set["live"] {
		base.Live = pf.in.Live
	}
	return base
}

func (a *App) productsCmd(ctx context.Context, args []string) error {
	sub, args, err := subcommand("products", args)
	if err != nil {
		return err
	}

	switch sub {
	case "list":
		fs := a.flags("products list")
		category := fs.String("category", "", "filter by category")
		text := fs.String("q", "", "search text")
		live := fs.String("live", "", "filter by live flag")
		if err := fs.Parse(args); err != nil {
			return err
		}
		items, err := a.products.List(ctx, query(map[string]*string{"category": category, "q": text, "live": live}))
		if err != nil {
			return err
		}
		return printProducts(a.out, items)

	case "get":
		id, _, err := idArg("products get ID", args)
		if err != nil {
			return err
		}
		p, err := a.products.Get(ctx, id)
		if err != nil {
			return err
		}
		return printProduct(a.out, p)

	case "create":
		var pf productFlags
		if err := a.productFlagSet("products create", &pf).Parse(args); err != nil {
			return err
		}
		file, err := pf.file()
		if err != nil {
			return err
		}
		p, err := a.products.Create(ctx, pf.in, file)
		if err != nil {
			return err
		}
		a.done("Created product %s", p.ID)
		return printProduct(a.out, p)

	case "update":
		id, rest, err := idArg("products update ID [flags]", args)
		if err != nil {
			return err
		}
		var pf productFlags
		fs := a.productFlagSet("products update", &pf)
		if err := fs.Parse(rest); err != nil {
			return err
		}
		file, err := pf.file()
		if err != nil {
			return err
		}
		current, err := a.products.Get(ctx, id)
		if err != nil {
			return err
		}
		p, err := a.products.Update(ctx, id, pf.overlay(current.Input(), visited(fs)), file)
		if err != nil {
			return err
		}
		a.done("Updated product %s", p.ID)
		return printProduct(a.out, p)

	case "delete":
		id, _, err := idArg("products delete ID", args)
		if err != nil {
			return err
		}
		if err := a.products.Remove(ctx, id); err != nil {
			return err
		}
		a.done("Deleted product %s", id)
		return nil

	default:
		return fmt.Errorf("%w: unknown products command %q", ErrUsage, sub)
	}
}

func (a *App) reservationsCmd(ctx context.Context, args []string) error {
	sub, args, err := subcommand("reservations", args)
	if err != nil {
		return err
	}

	switch sub {
	case "list":
		items, err := a.reservations.List(ctx, nil)
		if err != nil {
			return err
		}
		return printReservations(a.out, items)

	case "get":
		id, _, err := idArg("reservations get ID", args)
		if err != nil {
			return err
		}
		r, err := a.reservations.Get(ctx, id)
		if err != nil {
			return err
		}
		return printReservation(a.out, r)

	case "create":
		fs := a.flags("reservations create")
		var in catalog.ReservationInput
		var products string
		fs.StringVar(&in.CustomerName, "name", "", "customer name")
		fs.StringVar(&in.CustomerPhone, "phone", "", "customer phone")
		fs.StringVar(&in.CustomerEmail, "email", "", "customer email")
		fs.StringVar(&products, "products", "", "comma separated product ids")
		fs.StringVar(&in.Date, "date", "", "visit date, YYYY-MM-DD")
		fs.StringVar(&in.Time, "time", "", "visit time, HH:MM")
		if err := fs.Parse(args); err != nil {
			return err
		}
		in.ProductIDs = catalog.SplitIDs(products)

		r, err := a.reservations.Create(ctx, in, nil)
		if err != nil {
			return err
		}
		a.done("Created reservation %s", r.ID)
		return printReservation(a.out, r)

	case "delete":
		id, _, err := idArg("reservations delete ID", args)
		if err != nil {
			return err
		}
		if err := a.reservations.Remove(ctx, id); err != nil {
			return err
		}
		a.done("Deleted reservation %s", id)
		return nil

	default:
		return fmt.Errorf("%w: unknown reservations command %q", ErrUsage, sub)
	}
}

func (a *App) streamsCmd(ctx context.Context, args []string) error {
	sub, args, err := subcommand("streams", args)
	if err != nil {
		return err
	}

	switch sub {
	case "list":
		fs := a.flags("streams list")
		status := fs.String("status", "", "SCHEDULED, LIVE or ENDED")
		if err := fs.Parse(args); err != nil {
			return err
		}
		items, err := a.streams.List(ctx, query(map[string]*string{"status": status}))
		if err != nil {
			return err
		}
		return printStreams(a.out, items)

	case "get":
		id, _, err := idArg("streams get ID", args)
		if err != nil {
			return err
		}
		s, err := a.streams.Get(ctx, id)
		if err != nil {
			return err
		}
		return printStream(a.out, s)

	case "create":
		fs := a.flags("streams create")
		var in catalog.StreamInput
		fs.StringVar(&in.Title, "title", "", "stream title")
		fs.StringVar(&in.Description, "description", "", "stream description")
		fs.StringVar(&in.HostID, "host", "", "host user id, defaults to the signed in user")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if in.HostID == "" {
			if s, ok := a.sessions.Current(); ok {
				in.HostID = s.UserID
			}
		}

		s, err := a.streams.Create(ctx, in, nil)
		if err != nil {
			return err
		}
		a.done("Created stream %s", s.ID)
		return printStream(a.out, s)

	case "delete":
		id, _, err := idArg("streams delete ID", args)
		if err != nil {
			return err
		}
		if err := a.streams.Remove(ctx, id); err != nil {
			return err
		}
		a.done("Deleted stream %s", id)
		return nil

	default:
		return fmt.Errorf("%w: unknown streams command %q", ErrUsage, sub)
	}
}
