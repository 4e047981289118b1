// cmd/cli/commands.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"github.com/your-org/storefront-client/internal/domain/cart"
	"github.com/your-org/storefront-client/internal/domain/order"
	"github.com/your-org/storefront-client/internal/domain/product"
	"github.com/your-org/storefront-client/internal/domain/user"
)

func registry() map[string]command {
	var (
		category    uint
		search      string
		username    string
		password    string
		email       string
		firstName   string
		lastName    string
		addQty      int
		address     string
		payment     string
		receiptPath string
		receiptHTML bool
	)

	credentialFlags := func(fs *pflag.FlagSet) {
		fs.StringVarP(&username, "username", "u", "", "account username")
		fs.StringVarP(&password, "password", "p", "", "account password (default $STOREFRONT_PASSWORD)")
	}

	return map[string]command{
		"products": {
			usage:   "products [--category id] [--search q]",
			summary: "List catalog products",
			flags: func(fs *pflag.FlagSet) {
				fs.UintVar(&category, "category", 0, "only products in this category")
				fs.StringVarP(&search, "search", "s", "", "full text search")
			},
			run: func(ctx context.Context, e *env, args []string) error {
				var products []product.Product
				var err error
				if search != "" {
					products, err = e.app.SearchProducts(ctx, search)
				} else {
					products, err = e.app.Products(ctx, product.ListFilter{CategoryID: category})
				}
				if err != nil {
					return err
				}
				if e.json {
					return e.printJSON(products)
				}
				return e.table("ID\tNAME\tPRICE\tSTOCK\tCATEGORY", func(w *tabwriter.Writer) {
					for _, p := range products {
						fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", p.ID, p.Name, product.FormatPrice(p.Price), p.Stock, p.Category.Name)
					}
				})
			},
		},

		"categories": {
			usage:   "categories",
			summary: "List product categories",
			run: func(ctx context.Context, e *env, args []string) error {
				categories, err := e.app.Categories(ctx)
				if err != nil {
					return err
				}
				if e.json {
					return e.printJSON(categories)
				}
				return e.table("ID\tNAME\tDESCRIPTION", func(w *tabwriter.Writer) {
					for _, c := range categories {
						fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, c.Description)
					}
				})
			},
		},

		"register": {
			usage:   "register -u name --email addr",
			summary: "Create an account and log in",
			flags: func(fs *pflag.FlagSet) {
				credentialFlags(fs)
				fs.StringVar(&email, "email", "", "email address")
				fs.StringVar(&firstName, "first-name", "", "first name")
				fs.StringVar(&lastName, "last-name", "", "last name")
			},
			run: func(ctx context.Context, e *env, args []string) error {
				pw := passwordOrEnv(password)
				u, err := e.app.Register(ctx, user.RegisterRequest{
					Username:        username,
					Email:           email,
					Password:        pw,
					PasswordConfirm: pw,
					FirstName:       firstName,
					LastName:        lastName,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(e.out, "Registered and logged in as %s\n", u.FullName())
				return nil
			},
		},

		"login": {
			usage:   "login -u name",
			summary: "Log in; the guest cart is replaced by the account cart",
			flags:   credentialFlags,
			run: func(ctx context.Context, e *env, args []string) error {
				u, err := e.app.Login(ctx, user.Credentials{Username: username, Password: passwordOrEnv(password)})
				if err != nil {
					return err
				}
				fmt.Fprintf(e.out, "Logged in as %s\n", u.FullName())
				return nil
			},
		},

		"logout": {
			usage:   "logout",
			summary: "Log out and clear the cart",
			run: func(ctx context.Context, e *env, args []string) error {
				if err := e.app.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(e.out, "Logged out")
				return nil
			},
		},

		"whoami": {
			usage:   "whoami",
			summary: "Show the current session",
			run: func(ctx context.Context, e *env, args []string) error {
				current := e.app.Session()
				if e.json {
					return e.printJSON(struct {
						State string     `json:"state"`
						User  *user.User `json:"user"`
					}{e.app.SessionState().String(), current.User})
				}
				if current.User == nil {
					fmt.Fprintln(e.out, "Not logged in")
					return nil
				}
				fmt.Fprintf(e.out, "%s (%s) <%s>\n", current.User.FullName(), current.User.Username, current.User.Email)
				return nil
			},
		},

		"cart": {
			usage:   "cart",
			summary: "Show the active cart",
			run: func(ctx context.Context, e *env, args []string) error {
				return e.printCart()
			},
		},

		"add": {
			usage:   "add <product-id> [-q n]",
			summary: "Add a product to the cart",
			flags: func(fs *pflag.FlagSet) {
				fs.IntVarP(&addQty, "quantity", "q", 1, "units to add")
			},
			run: func(ctx context.Context, e *env, args []string) error {
				id, err := productArg(args, 1)
				if err != nil {
					return err
				}
				if err := e.app.AddToCart(ctx, id, addQty); err != nil {
					return err
				}
				return e.printCart()
			},
		},

		"remove": {
			usage:   "remove <product-id>",
			summary: "Remove a product from the cart",
			run: func(ctx context.Context, e *env, args []string) error {
				id, err := productArg(args, 1)
				if err != nil {
					return err
				}
				if err := e.app.RemoveFromCart(ctx, id); err != nil {
					return err
				}
				return e.printCart()
			},
		},

		"qty": {
			usage:   "qty <product-id> <quantity>",
			summary: "Set a product's quantity; 0 removes it",
			run: func(ctx context.Context, e *env, args []string) error {
				id, err := productArg(args, 2)
				if err != nil {
					return err
				}
				qty, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid quantity %q", args[1])
				}
				if err := e.app.UpdateCartQuantity(ctx, id, qty); err != nil {
					return err
				}
				return e.printCart()
			},
		},

		"sync": {
			usage:   "sync",
			summary: "Refresh the account cart from the server",
			run: func(ctx context.Context, e *env, args []string) error {
				if err := e.app.SyncCart(ctx); err != nil {
					return err
				}
				return e.printCart()
			},
		},

		"checkout": {
			usage:   "checkout --address text [--payment method]",
			summary: "Place an order for the account cart",
			flags: func(fs *pflag.FlagSet) {
				methods := make([]string, len(order.PaymentMethods))
				for i, m := range order.PaymentMethods {
					methods[i] = string(m)
				}
				fs.StringVar(&address, "address", "", "shipping address")
				fs.StringVar(&payment, "payment", string(order.PaymentMethodCreditCard), "one of "+strings.Join(methods, ", "))
			},
			run: func(ctx context.Context, e *env, args []string) error {
				placed, err := e.app.PlaceOrder(ctx, address, order.PaymentMethod(payment))
				if err != nil {
					return err
				}
				if e.json {
					return e.printJSON(placed)
				}
				fmt.Fprintf(e.out, "Order #%d placed: %d items, %s, %s\n",
					placed.ID, placed.ItemCount(), product.FormatPrice(placed.TotalAmount), placed.Status.Label())
				return nil
			},
		},

		"orders": {
			usage:   "orders [id] [--receipt file]",
			summary: "List orders, show one, or save its receipt",
			flags: func(fs *pflag.FlagSet) {
				fs.StringVar(&receiptPath, "receipt", "", "write the order's receipt to this file")
				fs.BoolVar(&receiptHTML, "html", false, "write the receipt as HTML instead of PDF")
			},
			run: func(ctx context.Context, e *env, args []string) error {
				if len(args) == 0 {
					return e.listOrders(ctx)
				}
				id, err := productArg(args, 1)
				if err != nil {
					return err
				}
				if receiptPath != "" {
					return e.saveReceipt(ctx, id, receiptPath, receiptHTML)
				}
				return e.showOrder(ctx, id)
			},
		},
	}
}

func (e *env) listOrders(ctx context.Context) error {
	orders, err := e.app.Orders(ctx)
	if err != nil {
		return err
	}
	if e.json {
		return e.printJSON(orders)
	}
	return e.table("ID\tDATE\tSTATUS\tITEMS\tTOTAL", func(w *tabwriter.Writer) {
		for _, o := range orders {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
				o.ID, o.CreatedAt.Format("2006-01-02"), o.Status.Label(), o.ItemCount(), product.FormatPrice(o.TotalAmount))
		}
	})
}

func (e *env) showOrder(ctx context.Context, id uint) error {
	o, err := e.app.Order(ctx, id)
	if err != nil {
		return err
	}
	if e.json {
		return e.printJSON(o)
	}
	fmt.Fprintf(e.out, "Order #%d  %s  %s\nShip to: %s\nPayment: %s\n\n",
		o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.Status.Label(), o.ShippingAddress, o.PaymentMethod.Label())
	return e.table("PRODUCT\tQTY\tPRICE\tSUBTOTAL", func(w *tabwriter.Writer) {
		for _, item := range o.Items {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
				item.Product.Name, item.Quantity, product.FormatPrice(item.Price), product.FormatPrice(item.Subtotal()))
		}
		fmt.Fprintf(w, "\t\tTOTAL\t%s\n", product.FormatPrice(o.TotalAmount))
	})
}

func (e *env) saveReceipt(ctx context.Context, id uint, path string, html bool) error {
	var data []byte
	if html {
		markup, err := e.app.ReceiptHTML(ctx, id)
		if err != nil {
			return err
		}
		data = []byte(markup)
	} else {
		buf, err := e.app.Receipt(ctx, id)
		if err != nil {
			return err
		}
		data = buf.Bytes()
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing receipt: %w", err)
	}
	fmt.Fprintf(e.out, "Receipt for order #%d written to %s\n", id, path)
	return nil
}

func (e *env) printCart() error {
	current := e.app.Cart()
	totals := current.Totals()
	if e.json {
		return e.printJSON(struct {
			Source string      `json:"source"`
			Items  []cart.Line `json:"items"`
			Totals cart.Totals `json:"totals"`
		}{current.Source.String(), current.Lines, totals})
	}

	if current.IsEmpty() {
		fmt.Fprintf(e.out, "Cart (%s) is empty\n", current.Source)
		return nil
	}

	fmt.Fprintf(e.out, "Cart (%s)\n", current.Source)
	return e.table("ID\tPRODUCT\tQTY\tPRICE\tSUBTOTAL", func(w *tabwriter.Writer) {
		for _, line := range current.Lines {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
				line.ID, line.Name, line.Quantity, product.FormatPrice(line.Price), product.FormatPrice(line.Subtotal()))
		}
		fmt.Fprintf(w, "\t\t%d\tTOTAL\t%s\n", totals.TotalItems, product.FormatPrice(totals.TotalPrice))
	})
}

func (e *env) table(header string, rows func(w *tabwriter.Writer)) error {
	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	return w.Flush()
}

func (e *env) printJSON(v any) error {
	encoder := json.NewEncoder(e.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// productArg parses args[0] as an id and checks the positional count
func productArg(args []string, want int) (uint, error) {
	if len(args) != want {
		return 0, fmt.Errorf("expected %d argument(s), got %d", want, len(args))
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return uint(id), nil
}

func passwordOrEnv(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("STOREFRONT_PASSWORD")
}
