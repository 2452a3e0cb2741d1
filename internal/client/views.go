package client

import (
	"context"
	"strings"
)

const (
	RouteLogin     = "/login"
	RouteRegister  = "/register"
	RouteDashboard = "/dashboard"
)

type Navigator interface {
	Navigate(route string)
}

type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

type LoginView struct {
	Email    string
	Password string
	Error    string

	api     *API
	session *Session
	nav     Navigator
}

func NewLoginView(api *API, session *Session, nav Navigator) *LoginView {
	return &LoginView{api: api, session: session, nav: nav}
}

// Submit logs in with the current fields. On failure the fields are kept
// and Error holds the reason.
func (v *LoginView) Submit(ctx context.Context) error {
	v.Error = ""

	result, err := v.api.Login(ctx, v.Email, v.Password)
	if err != nil {
		v.Error = ErrorMessage(err, "Login failed")
		return err
	}
	if err := v.session.Login(result.Token, result.User); err != nil {
		v.Error = "Login failed"
		return err
	}

	v.nav.Navigate(RouteDashboard)
	return nil
}

type RegisterView struct {
	Name     string
	Email    string
	Password string
	Error    string

	api     *API
	session *Session
	nav     Navigator
}

func NewRegisterView(api *API, session *Session, nav Navigator) *RegisterView {
	return &RegisterView{api: api, session: session, nav: nav}
}

func (v *RegisterView) Submit(ctx context.Context) error {
	v.Error = ""

	result, err := v.api.Register(ctx, v.Name, v.Email, v.Password)
	if err != nil {
		v.Error = ErrorMessage(err, "Registration failed")
		return err
	}
	if err := v.session.Login(result.Token, result.User); err != nil {
		v.Error = "Registration failed"
		return err
	}

	v.nav.Navigate(RouteDashboard)
	return nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
