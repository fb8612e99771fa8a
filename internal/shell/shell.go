// Package shell は端末のストアフロント。1行1コマンドで画面を切り替える
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"storefront/internal/catalog"
	"storefront/internal/domain/model"
	"storefront/internal/notify"
	repo "storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/session"
	"storefront/internal/theme"
	"storefront/internal/usecase"
	"storefront/internal/view"

	"github.com/labstack/gommon/log"
)

var errUsage = errors.New("usage")

type Deps struct {
	Store         *session.Store
	Browse        *usecase.BrowseUsecase
	Cart          *usecase.CartUsecase
	Auth          *usecase.AuthUsecase
	Profile       *usecase.ProfileUsecase
	AdminProducts *usecase.AdminProductUsecase
	AdminUsers    *usecase.AdminUserUsecase
	Theme         *theme.Store
	Renderer      *view.Renderer
	Notifier      notify.Notifier
	Logger        *log.Logger
}

type Shell struct {
	d      Deps
	out    io.Writer
	router *router.Router
	log    *log.Logger

	mu           sync.Mutex
	current      string
	crashed      error
	productQuery string
	userQuery    string
}

// DI
func New(d Deps, out io.Writer) *Shell {
	if d.Logger == nil {
		d.Logger = log.New("shell")
		d.Logger.SetLevel(log.OFF)
	}
	s := &Shell{d: d, out: out, log: d.Logger, current: router.PathHome}
	s.router = s.routes()

	//デバウンス後の検索が反映されたら一覧を描き直す
	d.Browse.OnChange(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.current == router.PathHome && s.crashed == nil {
			s.renderLocked(context.Background(), router.PathHome)
		}
	})
	return s
}

func (s *Shell) routes() *router.Router {
	r := router.New(s.d.Store, s.log)
	r.Handle(router.PathHome, s.viewHome, router.RequireAuth())
	r.Handle(router.PathLogin, s.viewLogin, router.RequireGuest())
	r.Handle(router.PathRegister, s.viewRegister, router.RequireGuest())
	r.Handle(router.PathProduct, s.viewProduct, router.RequireAuth())
	r.Handle(router.PathCart, s.viewCart, router.RequireAuth())
	r.Handle(router.PathProfile, s.viewProfile, router.RequireAuth())
	r.Handle(router.PathAdminProducts, s.viewAdminProducts, router.RequireAdmin())
	r.Handle(router.PathAdminUsers, s.viewAdminUsers, router.RequireAdmin())
	return r
}

// Runはセッションを復元して、inが尽きるかquitまでコマンドを処理する
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	if err := s.d.Auth.Restore(ctx); err != nil {
		s.log.Warnf("restore session: %v", err)
	}
	s.Navigate(ctx, router.PathHome)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !sc.Scan() {
			break
		}
		quit := s.Exec(ctx, sc.Text())
		if quit {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return sc.Err()
}

// Navigateはガードを通して画面を開く
func (s *Shell) Navigate(ctx context.Context, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderLocked(ctx, path)
}

func (s *Shell) renderLocked(ctx context.Context, path string) {
	opened, err := s.router.Navigate(ctx, path)
	s.current = opened

	var pe *router.PanicError
	switch {
	case errors.As(err, &pe):
		s.crashed = pe
		s.d.Renderer.Recovery(pe)
	case err != nil:
		s.d.Renderer.InlineError("Error", err)
	}
}

// enterHomeは一覧の操作の前に呼ぶ。別の画面からなら状態を初期化してから一覧を開いた扱いにする
func (s *Shell) enterHome() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != router.PathHome {
		s.d.Browse.Reset()
		s.current = router.PathHome
	}
}

// Current は今開いている画面のパス
func (s *Shell) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Execは1行を実行する。quitならtrue。
// コマンド中のpanicも復旧画面に回す
func (s *Shell) Exec(ctx context.Context, line string) (quit bool) {
	defer func() {
		if v := recover(); v != nil {
			s.log.Errorf("command %q panicked: %v", line, v)
			s.mu.Lock()
			s.crashed = fmt.Errorf("%v", v)
			s.mu.Unlock()
			s.d.Renderer.Recovery(fmt.Errorf("%v", v))
		}
	}()

	args, err := splitArgs(line)
	if err != nil {
		s.d.Renderer.InlineError("Invalid input", err)
		return false
	}
	if len(args) == 0 {
		return false
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]

	s.mu.Lock()
	crashed := s.crashed
	s.mu.Unlock()
	if crashed != nil && cmd != "reload" && cmd != "quit" && cmd != "exit" {
		s.d.Renderer.Recovery(crashed)
		return false
	}

	if err := s.dispatch(ctx, cmd, rest); err != nil {
		if errors.Is(err, errQuit) {
			return true
		}
		if errors.Is(err, errUsage) {
			fmt.Fprintln(s.out, err.Error())
		}
	}
	return false
}

var errQuit = errors.New("quit")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

func (s *Shell) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "quit", "exit":
		return errQuit
	case "help", "?":
		s.help()
		return nil
	case "reload":
		return s.reload(ctx)
	case "home", "ls":
		s.Navigate(ctx, router.PathHome)
	case "search":
		s.enterHome()
		s.d.Browse.SetSearch(strings.Join(args, " "))
		//入力欄は即時、絞り込みはデバウンス後にOnChangeで描き直す
		fmt.Fprintf(s.out, "searching %q…\n", strings.Join(args, " "))
	case "search!":
		//デバウンスを待たずに絞り込む
		s.enterHome()
		s.d.Browse.SetSearch(strings.Join(args, " "))
		s.d.Browse.FlushSearch()
	case "category":
		if len(args) != 1 {
			return usage("category <name|all>")
		}
		s.enterHome()
		s.d.Browse.SetCategory(args[0])
		s.Navigate(ctx, router.PathHome)
	case "sort":
		if len(args) != 1 {
			return usage("sort <" + joinSortKeys() + ">")
		}
		key, err := catalog.ParseSortKey(args[0])
		if err != nil {
			return usage("sort <" + joinSortKeys() + ">")
		}
		s.enterHome()
		s.d.Browse.SetSort(key)
		s.Navigate(ctx, router.PathHome)
	case "page":
		n, err := intArg(args, 0)
		if err != nil {
			return usage("page <n>")
		}
		s.enterHome()
		s.d.Browse.SetPage(n)
		s.Navigate(ctx, router.PathHome)
	case "next":
		s.enterHome()
		s.d.Browse.NextPage()
		s.Navigate(ctx, router.PathHome)
	case "prev":
		s.enterHome()
		s.d.Browse.PrevPage()
		s.Navigate(ctx, router.PathHome)
	case "show":
		if len(args) != 1 {
			return usage("show <product-id>")
		}
		s.Navigate(ctx, "/products/"+args[0])
	case "cart":
		s.Navigate(ctx, router.PathCart)
	case "add", "inc", "dec", "qty", "rm", "clear", "buy":
		return s.cartCommand(ctx, cmd, args)
	case "login":
		if len(args) != 2 {
			return usage("login <email> <password>")
		}
		if _, err := s.d.Auth.Login(ctx, args[0], args[1]); err != nil {
			return err
		}
		s.d.Browse.Reset()
		s.Navigate(ctx, router.PathHome)
	case "register":
		return s.register(ctx, args)
	case "logout":
		err := s.d.Auth.Logout(ctx)
		s.Navigate(ctx, router.PathLogin)
		return err
	case "profile":
		return s.profile(ctx, args)
	case "theme":
		mode, err := s.d.Theme.Toggle()
		if err != nil {
			notify.Error(s.d.Notifier, "Could not save theme", err.Error())
			return err
		}
		notify.Info(s.d.Notifier, "Theme", string(mode))
	case "admin":
		return s.admin(ctx, args)
	default:
		fmt.Fprintf(s.out, "unknown command %q (try help)\n", cmd)
	}
	return nil
}

func (s *Shell) cartCommand(ctx context.Context, cmd string, args []string) error {
	if redirect, ok := s.router.Allowed(router.PathCart); !ok {
		s.Navigate(ctx, redirect)
		return nil
	}

	var err error
	switch cmd {
	case "add":
		if len(args) < 1 || len(args) > 2 {
			return usage("add <product-id> [qty]")
		}
		qty := 1
		if len(args) == 2 {
			if qty, err = strconv.Atoi(args[1]); err != nil {
				return usage("add <product-id> [qty]")
			}
		}
		var p model.Product
		if p, err = s.d.Browse.Product(ctx, args[0]); err != nil {
			s.d.Renderer.InlineError("Could not load product", err)
			return err
		}
		err = s.d.Cart.Add(ctx, p, qty)
	case "inc":
		if len(args) != 1 {
			return usage("inc <product-id>")
		}
		err = s.d.Cart.Increment(ctx, args[0])
	case "dec":
		if len(args) != 1 {
			return usage("dec <product-id>")
		}
		err = s.d.Cart.Decrement(ctx, args[0])
	case "qty":
		n, perr := intArg(args, 1)
		if len(args) != 2 || perr != nil {
			return usage("qty <product-id> <n>")
		}
		err = s.d.Cart.UpdateQuantity(ctx, args[0], n)
	case "rm":
		if len(args) != 1 {
			return usage("rm <product-id>")
		}
		err = s.d.Cart.Remove(ctx, args[0])
	case "clear":
		err = s.d.Cart.Clear(ctx)
	case "buy":
		var res model.PurchaseResult
		if res, err = s.d.Cart.Purchase(ctx); err == nil {
			s.d.Renderer.PurchaseResult(res)
		}
	}

	if s.Current() == router.PathCart {
		s.Navigate(ctx, router.PathCart)
	}
	return err
}

func (s *Shell) register(ctx context.Context, args []string) error {
	const u = "register <first-name> <last-name> <email> <age> <password> [user|admin]"
	if len(args) < 5 || len(args) > 6 {
		return usage(u)
	}
	age, err := strconv.Atoi(args[3])
	if err != nil {
		return usage(u)
	}
	in := repo.RegisterInput{FirstName: args[0], LastName: args[1], Email: args[2], Age: age, Password: args[4]}
	if len(args) == 6 {
		in.Role = model.Role(strings.ToLower(args[5]))
	}
	if err := s.d.Auth.Register(ctx, in); err != nil {
		return err
	}
	s.Navigate(ctx, router.PathLogin)
	return nil
}

func (s *Shell) profile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		s.Navigate(ctx, router.PathProfile)
		return nil
	}
	const u = "profile set <first-name> <last-name> <age>"
	if args[0] != "set" || len(args) != 4 {
		return usage(u)
	}
	if redirect, ok := s.router.Allowed(router.PathProfile); !ok {
		s.Navigate(ctx, redirect)
		return nil
	}
	age, err := strconv.Atoi(args[3])
	if err != nil {
		return usage(u)
	}
	if _, err := s.d.Profile.Update(ctx, repo.ProfileInput{FirstName: args[1], LastName: args[2], Age: age}); err != nil {
		return err
	}
	s.Navigate(ctx, router.PathProfile)
	return nil
}

func (s *Shell) reload(ctx context.Context) error {
	s.mu.Lock()
	s.crashed = nil
	s.mu.Unlock()

	s.d.Store.Reset()
	s.d.Browse.Reset()
	err := s.d.Auth.Restore(ctx)
	if err != nil {
		s.log.Warnf("reload: %v", err)
	}
	s.Navigate(ctx, router.PathHome)
	return err
}

func (s *Shell) help() {
	fmt.Fprint(s.out, `browse   home | search <text> | search! <text> | category <name|all> | sort <key> | page <n> | next | prev | show <id>
cart     cart | add <id> [qty] | inc <id> | dec <id> | qty <id> <n> | rm <id> | clear | buy
account  login <email> <password> | register <first> <last> <email> <age> <password> [role] | logout
         profile | profile set <first> <last> <age> | theme
admin    admin products [query] | admin create key=value... | admin update <id> key=value...
         admin delete <id> | admin export <file.xlsx> | admin import <file.xlsx>
         admin users [query] | admin rmuser <id>
other    reload | help | quit
`)
}

func intArg(args []string, i int) (int, error) {
	if i >= len(args) {
		return 0, errUsage
	}
	return strconv.Atoi(args[i])
}

func joinSortKeys() string {
	keys := catalog.SortKeys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return strings.Join(out, "|")
}

// admin export/importで使う
func openFile(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, st.Size(), nil
}
