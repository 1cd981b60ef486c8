package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGormConfigTranslatesDriverErrors(t *testing.T) {
	cfg := gormConfig()

	// The repositories match on gorm.ErrDuplicatedKey; without translation
	// the postgres driver returns raw pgconn errors and every unique-key
	// conflict would surface as an internal failure.
	assert.True(t, cfg.TranslateError)
}
