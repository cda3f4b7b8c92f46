package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

var ErrInvalidDraft = errors.New("invalid order")

type Buyer struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	FarmAlias string `json:"farmAlias"`
}

// Line is a product snapshot taken at purchase time. It does not follow
// later catalog changes.
type Line struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Image    string `json:"img"`
}

type Draft struct {
	Buyer Buyer  `json:"buyer"`
	Items []Line `json:"items"`
	Total int64  `json:"total"`
}

type Order struct {
	ID        string    `json:"id"`
	Buyer     Buyer     `json:"buyer"`
	Items     []Line    `json:"items"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists completed orders. Identity and creation time are assigned
// by the store, never by the caller. ListForUser returns newest first.
type Store interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, d Draft) (string, error)
	ListForUser(ctx context.Context, userID string) ([]Order, error)
}

var errTotalOverflow = errors.New("total overflow")

// Total folds price×quantity over lines.
func Total(lines []Line) (int64, error) {
	var total int64
	for _, l := range lines {
		line := l.Price * int64(l.Quantity)
		if l.Quantity != 0 && line/int64(l.Quantity) != l.Price {
			return 0, errTotalOverflow
		}
		if line < 0 || total > math.MaxInt64-line {
			return 0, errTotalOverflow
		}
		total += line
	}
	return total, nil
}

func ValidateDraft(d Draft) error {
	if strings.TrimSpace(d.Buyer.UserID) == "" {
		return fmt.Errorf("%w: buyer required", ErrInvalidDraft)
	}
	if len(d.Items) == 0 {
		return fmt.Errorf("%w: items required", ErrInvalidDraft)
	}

	seen := make(map[string]struct{}, len(d.Items))
	for _, it := range d.Items {
		if strings.TrimSpace(it.ID) == "" || it.Quantity <= 0 || it.Price < 0 {
			return fmt.Errorf("%w: bad item %q", ErrInvalidDraft, it.ID)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("%w: duplicate item %q", ErrInvalidDraft, it.ID)
		}
		seen[it.ID] = struct{}{}
	}

	total, err := Total(d.Items)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	if total != d.Total {
		return fmt.Errorf("%w: total %d does not match items %d", ErrInvalidDraft, d.Total, total)
	}
	return nil
}

// SortNewestFirst orders by creation time descending, ties broken by id.
func SortNewestFirst(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
