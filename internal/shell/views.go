package shell

import (
	"context"
	"fmt"
	"os"
	"strings"

	"storefront/internal/router"
	"storefront/internal/usecase"
)

func (s *Shell) navbar() {
	u, ok := s.d.Store.User()
	s.d.Renderer.Navbar(u, ok, s.d.Store.CartCount(), s.d.Theme.Mode())
}

// 別の画面から戻ってきたら一覧の状態は初期値から
func (s *Shell) viewHome(ctx context.Context, _ router.Params) error {
	if s.current != router.PathHome {
		s.d.Browse.Reset()
	}
	s.navbar()
	s.d.Renderer.Home(s.d.Browse.View(ctx))
	return nil
}

func (s *Shell) viewLogin(ctx context.Context, _ router.Params) error {
	s.navbar()
	fmt.Fprintln(s.out, "Sign in: login <email> <password>")
	fmt.Fprintln(s.out, "No account? register <first-name> <last-name> <email> <age> <password>")
	return nil
}

func (s *Shell) viewRegister(ctx context.Context, _ router.Params) error {
	s.navbar()
	fmt.Fprintln(s.out, "register <first-name> <last-name> <email> <age> <password> [user|admin]")
	return nil
}

func (s *Shell) viewProduct(ctx context.Context, p router.Params) error {
	s.navbar()
	product, err := s.d.Browse.Product(ctx, p.Get("pid"))
	if err != nil {
		s.d.Renderer.InlineError("Could not load product", err)
		return nil
	}
	inCart := 0
	if line, ok := s.d.Store.Cart().Line(product.ID); ok {
		inCart = line.Quantity
	}
	s.d.Renderer.Product(product, inCart)
	return nil
}

func (s *Shell) viewCart(ctx context.Context, _ router.Params) error {
	s.navbar()
	if err := s.d.Store.CartErr(); err != nil && s.d.Store.Cart() == nil {
		s.d.Renderer.InlineError("Could not load cart", err)
		return nil
	}
	s.d.Renderer.Cart(s.d.Cart.Summary(), s.d.Cart.Busy())
	return nil
}

func (s *Shell) viewProfile(ctx context.Context, _ router.Params) error {
	s.navbar()
	u, _ := s.d.Store.User()
	s.d.Renderer.Profile(u)
	return nil
}

func (s *Shell) viewAdminProducts(ctx context.Context, _ router.Params) error {
	s.navbar()
	products, err := s.d.AdminProducts.List(ctx)
	if err != nil {
		s.d.Renderer.InlineError("Could not load products", err)
		return nil
	}
	if s.productQuery != "" {
		fmt.Fprintf(s.out, "filter: %q\n", s.productQuery)
	}
	s.d.Renderer.AdminProducts(usecase.SearchProducts(products, s.productQuery))
	return nil
}

func (s *Shell) viewAdminUsers(ctx context.Context, _ router.Params) error {
	s.navbar()
	users, err := s.d.AdminUsers.List(ctx)
	if err != nil {
		s.d.Renderer.InlineError("Could not load users", err)
		return nil
	}
	if s.userQuery != "" {
		fmt.Fprintf(s.out, "filter: %q\n", s.userQuery)
	}
	me, _ := s.d.Store.User()
	s.d.Renderer.AdminUsers(usecase.SearchUsers(users, s.userQuery), me.ID)
	return nil
}

// adminはサブコマンドの前に管理者ガードを評価する
func (s *Shell) admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("admin <products|create|update|delete|export|import|users|rmuser> ...")
	}
	if redirect, ok := s.router.Allowed(router.PathAdminProducts); !ok {
		s.Navigate(ctx, redirect)
		return nil
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "products":
		s.mu.Lock()
		s.productQuery = strings.Join(rest, " ")
		s.mu.Unlock()
		s.Navigate(ctx, router.PathAdminProducts)
	case "create":
		in, err := parseProductFields(defaultProductInput(), rest)
		if err != nil {
			return usage(err.Error())
		}
		if _, err := s.d.AdminProducts.Create(ctx, in); err != nil {
			return err
		}
		s.Navigate(ctx, router.PathAdminProducts)
	case "update":
		if len(rest) < 2 {
			return usage("admin update <id> key=value...")
		}
		return s.adminUpdate(ctx, rest[0], rest[1:])
	case "delete":
		if len(rest) != 1 {
			return usage("admin delete <id>")
		}
		if err := s.d.AdminProducts.Delete(ctx, rest[0]); err != nil {
			return err
		}
		s.Navigate(ctx, router.PathAdminProducts)
	case "export":
		if len(rest) != 1 {
			return usage("admin export <file.xlsx>")
		}
		return s.adminExport(ctx, rest[0])
	case "import":
		if len(rest) != 1 {
			return usage("admin import <file.xlsx>")
		}
		return s.adminImport(ctx, rest[0])
	case "users":
		s.mu.Lock()
		s.userQuery = strings.Join(rest, " ")
		s.mu.Unlock()
		s.Navigate(ctx, router.PathAdminUsers)
	case "rmuser":
		if len(rest) != 1 {
			return usage("admin rmuser <id>")
		}
		if err := s.d.AdminUsers.Delete(ctx, rest[0]); err != nil {
			return err
		}
		s.Navigate(ctx, router.PathAdminUsers)
	default:
		return usage("admin <products|create|update|delete|export|import|users|rmuser> ...")
	}
	return nil
}

func (s *Shell) adminUpdate(ctx context.Context, id string, fields []string) error {
	products, err := s.d.AdminProducts.List(ctx)
	if err != nil {
		s.d.Renderer.InlineError("Could not load products", err)
		return err
	}
	for _, p := range products {
		if p.ID != id {
			continue
		}
		in, err := parseProductFields(inputFromProduct(p), fields)
		if err != nil {
			return usage(err.Error())
		}
		if _, err := s.d.AdminProducts.Update(ctx, id, in); err != nil {
			return err
		}
		s.Navigate(ctx, router.PathAdminProducts)
		return nil
	}
	s.d.Renderer.InlineError("Could not update product", fmt.Errorf("no product %s", id))
	return nil
}

func (s *Shell) adminExport(ctx context.Context, path string) error {
	f, err := os.Create(path)
	if err != nil {
		s.d.Renderer.InlineError("Export failed", err)
		return err
	}
	n, err := s.d.AdminProducts.Export(ctx, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "exported %d products to %s\n", n, path)
	return nil
}

func (s *Shell) adminImport(ctx context.Context, path string) error {
	f, size, err := openFile(path)
	if err != nil {
		s.d.Renderer.InlineError("Import failed", err)
		return err
	}
	defer f.Close()

	res, err := s.d.AdminProducts.Import(ctx, f, size)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "created %d, skipped %d, failed %d\n", res.Created, res.Skipped, res.Failed)
	s.Navigate(ctx, router.PathAdminProducts)
	return nil
}
