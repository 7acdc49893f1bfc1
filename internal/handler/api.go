package handler

import (
	"strings"

	"github.com/sadhanacard/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db      *gorm.DB
	cards   *service.CardService
	shares  *service.ShareService
	baseURL string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, baseURL string) *API {
	return &API{
		db:      gdb,
		cards:   service.NewCardService(gdb),
		shares:  service.NewShareService(gdb),
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Cards 暴露记录服务，便于测试注入更短的去抖安静期。
func (a *API) Cards() *service.CardService {
	return a.cards
}

// SetCards 覆盖记录服务，主要面向测试场景。
func (a *API) SetCards(cards *service.CardService) {
	a.cards = cards
}
