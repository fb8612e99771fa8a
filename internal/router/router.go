package router

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/labstack/gommon/log"
)

// リダイレクトが続く上限
const maxRedirects = 5

var (
	ErrNotFound     = errors.New("no such view")
	ErrRedirectLoop = errors.New("too many redirects")
)

// PanicErrorは画面の描画中のpanic。シェルは復旧画面を出す
type PanicError struct {
	Path  string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("view %s crashed: %v", e.Path, e.Value)
}

type Params map[string]string

func (p Params) Get(name string) string {
	return p[name]
}

type Handler func(ctx context.Context, params Params) error

type route struct {
	pattern  string
	segments []string
	handler  Handler
	guard    Guard
}

// Routerはパスを画面に振り分ける。ガードで弾かれたらリダイレクト先を開く
type Router struct {
	session Session
	routes  []route
	log     *log.Logger
}

// DI
func New(session Session, logger *log.Logger) *Router {
	if logger == nil {
		logger = log.New("router")
		logger.SetLevel(log.OFF)
	}
	return &Router{session: session, log: logger}
}

// Handleは登録順に照合する
func (r *Router) Handle(pattern string, h Handler, guards ...Guard) {
	r.routes = append(r.routes, route{
		pattern:  pattern,
		segments: split(pattern),
		handler:  h,
		guard:    Chain(guards...),
	})
}

// Navigateはガードを評価してから画面を描画する。実際に開いたパスを返す
func (r *Router) Navigate(ctx context.Context, path string) (string, error) {
	for i := 0; i <= maxRedirects; i++ {
		rt, params, ok := r.match(path)
		if !ok {
			return path, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		if redirect, allowed := rt.guard(r.session); !allowed {
			r.log.Debugf("guard %s -> %s", path, redirect)
			path = redirect
			continue
		}
		return path, r.render(ctx, path, rt.handler, params)
	}
	return path, ErrRedirectLoop
}

// renderは描画中のpanicをPanicErrorに変える
func (r *Router) render(ctx context.Context, path string, h Handler, params Params) (err error) {
	defer func() {
		if v := recover(); v != nil {
			r.log.Errorf("view %s panicked: %v", path, v)
			err = &PanicError{Path: path, Value: v, Stack: debug.Stack()}
		}
	}()
	return h(ctx, params)
}

// Allowedは描画せずにガードだけ評価する
func (r *Router) Allowed(path string) (redirect string, ok bool) {
	rt, _, found := r.match(path)
	if !found {
		return "", false
	}
	return rt.guard(r.session)
}

func (r *Router) match(path string) (route, Params, bool) {
	segs := split(path)
	for _, rt := range r.routes {
		if len(rt.segments) != len(segs) {
			continue
		}
		params := Params{}
		ok := true
		for i, s := range rt.segments {
			if strings.HasPrefix(s, ":") {
				if segs[i] == "" {
					ok = false
					break
				}
				params[s[1:]] = segs[i]
				continue
			}
			if s != segs[i] {
				ok = false
				break
			}
		}
		if ok {
			return rt, params, true
		}
	}
	return route{}, nil, false
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
