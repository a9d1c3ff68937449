package demo

import (
	"github.com/vango-dev/navstack/pkg/keycodec"
	"github.com/vango-dev/navstack/pkg/nav"
)

// Home is the root screen.
type Home struct{ nav.Destination }

// Profile shows one user.
type Profile struct {
	nav.Destination
	ID int `json:"id"`
}

// Settings is shown as a bottom sheet and requires a login.
type Settings struct{ nav.Destination }

// Login is where RequireLogin sends anonymous users.
type Login struct{ nav.Destination }

// AskName is a modal that hands the typed name back to its caller.
type AskName struct {
	nav.Result[string]
	Prompt string `json:"prompt"`
}

// NewCodec registers every demo key under a stable name.
func NewCodec() *keycodec.Codec {
	c := keycodec.New()
	keycodec.MustRegister[Home](c, "home")
	keycodec.MustRegister[Profile](c, "profile")
	keycodec.MustRegister[Settings](c, "settings")
	keycodec.MustRegister[Login](c, "login")
	keycodec.MustRegister[*AskName](c, "ask-name")
	return c
}
