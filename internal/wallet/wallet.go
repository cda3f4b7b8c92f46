package wallet

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FarmAlias string `json:"farmAlias"`
	Avatar    string `json:"avatar"`
	Coins     int64  `json:"coins"`
}

// DefaultUser is the demo farmer the storefront starts with.
func DefaultUser() User {
	return User{
		ID:        "1",
		FirstName: "Fabián",
		LastName:  "Escobar",
		FarmAlias: "FNEFarm",
		Avatar:    "https://avatars.githubusercontent.com/u/25256803?v=4",
		Coins:     12526,
	}
}

// Wallet keeps the single session user. Coins never go below zero.
type Wallet struct {
	mu   sync.Mutex
	user User
	log  *zap.Logger
}

func New(u User, log *zap.Logger) *Wallet {
	if log == nil {
		log = zap.NewNop()
	}
	u.Coins = max(0, u.Coins)
	return &Wallet{user: u, log: log}
}

// Credit sets the balance to an absolute value, as synced from the game.
func (w *Wallet) Credit(balance int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if balance < 0 {
		w.log.Warn("negative balance clamped to zero", zap.Int64("balance", balance))
	}
	w.user.Coins = max(0, balance)
}

func (w *Wallet) Debit(amount int64) {
	if amount <= 0 {
		w.log.Warn("ignored non-positive debit", zap.Int64("amount", amount))
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.user.Coins = max(0, w.user.Coins-amount)
}

func (w *Wallet) Balance() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.user.Coins
}

func (w *Wallet) CanAfford(amount int64) bool {
	return amount <= w.Balance()
}

func (w *Wallet) User() User {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.user
}

func (w *Wallet) DisplayName() string {
	u := w.User()
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
