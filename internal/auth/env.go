package auth

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvSource reads PHOENIX_PHONE and PHOENIX_TOKEN.
type EnvSource struct{}

type envCredentials struct {
	Phone string `env:"PHOENIX_PHONE"`
	Token string `env:"PHOENIX_TOKEN"`
}

func (EnvSource) Credentials(context.Context) (Credentials, error) {
	var raw envCredentials
	if err := env.Parse(&raw); err != nil {
		return Credentials{}, fmt.Errorf("parse env: %w", err)
	}
	return Credentials{Phone: raw.Phone, Token: raw.Token}, nil
}
