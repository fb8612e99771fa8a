// Package view は端末向けの画面描画。状態は持たない
package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"storefront/internal/catalog"
	"storefront/internal/domain/model"
	"storefront/internal/theme"
	"storefront/internal/usecase"

	"github.com/labstack/gommon/color"
	"github.com/shopspring/decimal"
)

type Renderer struct {
	out io.Writer
	c   *color.Color
}

func NewRenderer(out io.Writer, colored bool) *Renderer {
	c := color.New()
	c.SetOutput(out)
	if !colored {
		c.Disable()
	}
	return &Renderer{out: out, c: c}
}

func (r *Renderer) table() *tabwriter.Writer {
	return tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
}

// Navbarは頭文字・カートのバッジ・テーマ
func (r *Renderer) Navbar(user model.User, loggedIn bool, cartCount int, mode theme.Mode) {
	who := "guest"
	if loggedIn {
		who = fmt.Sprintf("[%s] %s", user.Initials(), user.FullName())
		if user.IsAdmin() {
			who += " " + r.c.Magenta("admin")
		}
	}
	fmt.Fprintf(r.out, "%s  %s  cart(%d)  %s\n", r.c.Bold("storefront"), who, cartCount, mode)
	fmt.Fprintln(r.out, strings.Repeat("-", 60))
}

func (r *Renderer) stockBadge(p model.Product) string {
	switch p.StockLevel() {
	case model.StockOut:
		return r.c.Red(model.StockOut.String())
	case model.StockLow:
		return r.c.Yellow(fmt.Sprintf("%s (%d)", model.StockLow, p.Stock))
	default:
		return fmt.Sprintf("%d", p.Stock)
	}
}

func (r *Renderer) Home(v usecase.HomeView) {
	if v.Err != nil {
		r.InlineError("Could not load products", v.Err)
		return
	}

	fmt.Fprintf(r.out, "search: %q", v.RawSearch)
	if v.RawSearch != v.State.Search {
		fmt.Fprint(r.out, r.c.Dim(" (typing)"))
	}
	fmt.Fprintf(r.out, "  category: %s  sort: %s\n", v.State.Category, v.State.Sort)
	fmt.Fprintf(r.out, "categories: %s, %s\n\n", catalog.AllCategories, strings.Join(v.Categories, ", "))

	if len(v.Page.Items) == 0 {
		fmt.Fprintln(r.out, "No products found.")
		return
	}

	tw := r.table()
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range v.Page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Category, Money(decimal.NewFromFloat(p.Price)), r.stockBadge(p))
	}
	tw.Flush()

	fmt.Fprintf(r.out, "\n%d products  page %s\n", v.Page.Total, r.pageNumbers(v.PageNumbers, v.Page.Page))
}

// 飛んでいる番号の間は…で表す
func (r *Renderer) pageNumbers(nums []int, current int) string {
	var b strings.Builder
	prev := 0
	for _, n := range nums {
		if prev != 0 && n > prev+1 {
			b.WriteString("… ")
		}
		if n == current {
			b.WriteString(r.c.Bold(fmt.Sprintf("[%d]", n)))
		} else {
			fmt.Fprintf(&b, "%d", n)
		}
		b.WriteString(" ")
		prev = n
	}
	return strings.TrimSpace(b.String())
}

func (r *Renderer) Product(p model.Product, inCart int) {
	fmt.Fprintln(r.out, r.c.Bold(p.Title))
	tw := r.table()
	fmt.Fprintf(tw, "id\t%s\n", p.ID)
	fmt.Fprintf(tw, "code\t%s\n", p.Code)
	fmt.Fprintf(tw, "category\t%s\n", p.Category)
	fmt.Fprintf(tw, "price\t%s\n", Money(decimal.NewFromFloat(p.Price)))
	fmt.Fprintf(tw, "stock\t%s\n", r.stockBadge(p))
	if inCart > 0 {
		fmt.Fprintf(tw, "in cart\t%d\n", inCart)
	}
	tw.Flush()
	if p.Description != "" {
		fmt.Fprintf(r.out, "\n%s\n", p.Description)
	}
	if p.Purchasable() {
		fmt.Fprintf(r.out, "\nadd %s [qty] to add it to your cart\n", p.ID)
	}
}

func (r *Renderer) Cart(s usecase.CartSummary, busy usecase.CartBusy) {
	if len(s.Lines) == 0 {
		fmt.Fprintln(r.out, "Your cart is empty.")
		return
	}

	tw := r.table()
	fmt.Fprintln(tw, "ID\tTITLE\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range s.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", l.Product.ID, l.Product.Title, l.Quantity,
			Money(decimal.NewFromFloat(l.Product.Price)), Money(l.Subtotal()))
	}
	tw.Flush()

	fmt.Fprintln(r.out)
	tw = r.table()
	fmt.Fprintf(tw, "items\t%d\n", s.ItemCount)
	fmt.Fprintf(tw, "subtotal\t%s\n", Money(s.Subtotal))
	if s.Shipping.IsZero() {
		fmt.Fprintf(tw, "shipping\t%s\n", r.c.Green("free"))
	} else {
		fmt.Fprintf(tw, "shipping\t%s\n", Money(s.Shipping))
	}
	fmt.Fprintf(tw, "total\t%s\n", r.c.Bold(Money(s.Total)))
	tw.Flush()

	switch {
	case busy.Purchasing:
		fmt.Fprintln(r.out, r.c.Dim("purchasing…"))
	case busy.Clearing:
		fmt.Fprintln(r.out, r.c.Dim("emptying cart…"))
	}
}

func (r *Renderer) PurchaseResult(res model.PurchaseResult) {
	if res.Ticket != nil {
		t := res.Ticket
		fmt.Fprintf(r.out, "ticket %s  amount %s  %s\n", t.Code, Money(decimal.NewFromFloat(t.Amount)),
			t.PurchaseDatetime.Format("2006-01-02 15:04"))
	}
	if len(res.Unavailable) > 0 {
		fmt.Fprintf(r.out, "left in cart (not enough stock): %s\n", strings.Join(res.Unavailable, ", "))
	}
}

func (r *Renderer) Profile(u model.User) {
	tw := r.table()
	fmt.Fprintf(tw, "name\t%s\n", u.FullName())
	fmt.Fprintf(tw, "email\t%s\n", u.Email)
	fmt.Fprintf(tw, "age\t%d\n", u.Age)
	fmt.Fprintf(tw, "role\t%s\n", u.Role)
	tw.Flush()
}

func (r *Renderer) AdminProducts(products []model.Product) {
	if len(products) == 0 {
		fmt.Fprintln(r.out, "No products.")
		return
	}
	tw := r.table()
	fmt.Fprintln(tw, "ID\tCODE\tTITLE\tCATEGORY\tPRICE\tSTOCK\tACTIVE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%t\n", p.ID, p.Code, p.Title, p.Category,
			Money(decimal.NewFromFloat(p.Price)), r.stockBadge(p), p.Status)
	}
	tw.Flush()
}

func (r *Renderer) AdminUsers(users []model.User, me string) {
	if len(users) == 0 {
		fmt.Fprintln(r.out, "No users.")
		return
	}
	tw := r.table()
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE")
	for _, u := range users {
		name := u.FullName()
		if u.ID == me {
			name += " (you)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, name, u.Email, u.Role)
	}
	tw.Flush()
}

// 画面内に出すエラー（カタログ・詳細の取得失敗）
func (r *Renderer) InlineError(title string, err error) {
	fmt.Fprintf(r.out, "%s: %v\n", r.c.Red(title), err)
}

// 描画中にpanicしたときの画面
func (r *Renderer) Recovery(err error) {
	fmt.Fprintln(r.out, r.c.Red("Something went wrong."))
	fmt.Fprintf(r.out, "%v\n", err)
	fmt.Fprintln(r.out, "Type \"reload\" to start over.")
}

// 金額は小数2桁
func Money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
