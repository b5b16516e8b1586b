package main

import (
	"testing"

	"github.com/commission-api/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNewMailer_DisabledWithoutHost(t *testing.T) {
	assert.Nil(t, newMailer(&config.Config{}))
}

func TestNewMailer_ConfiguredHost(t *testing.T) {
	assert.NotNil(t, newMailer(&config.Config{SMTPHost: "smtp.internal", SMTPPort: 587}))
}
