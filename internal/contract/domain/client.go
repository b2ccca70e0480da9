package domain

import "strings"

type ClientKind string

const (
	ClientCountry ClientKind = "COUNTRY"
	ClientPlayer  ClientKind = "PLAYER"
)

// Client is who ordered a contract: either a country or a player.
type Client interface {
	Kind() ClientKind
	Name() string
	isClient()
}

type CountryClient struct {
	Country string
}

func (c CountryClient) Kind() ClientKind { return ClientCountry }
func (c CountryClient) Name() string     { return c.Country }
func (CountryClient) isClient()          {}

type PlayerClient struct {
	Handle string
}

func (c PlayerClient) Kind() ClientKind { return ClientPlayer }
func (c PlayerClient) Name() string     { return c.Handle }
func (PlayerClient) isClient()          {}

// ParseClient builds a Client from its stored or submitted form.
func ParseClient(kind, name string) (Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidClient
	}
	switch ClientKind(strings.ToUpper(strings.TrimSpace(kind))) {
	case ClientCountry:
		return CountryClient{Country: name}, nil
	case ClientPlayer:
		return PlayerClient{Handle: name}, nil
	}
	return nil, ErrInvalidClient
}
