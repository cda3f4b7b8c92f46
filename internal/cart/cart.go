package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"WonderFarm/internal/catalog"
	"WonderFarm/internal/localstore"
	"WonderFarm/internal/storeerr"
)

// SnapshotKey is where the cart is mirrored in local storage.
const SnapshotKey = "farmGameCart"

const writeTimeout = 2 * time.Second

type Line struct {
	catalog.Product
	Count int `json:"count"`
}

type Summary struct {
	TotalItems int   `json:"totalItems"`
	TotalPrice int64 `json:"totalPrice"`
	ItemCount  int   `json:"itemCount"`
}

// Snapshots is the local persistence the cart mirrors itself to.
type Snapshots interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Cart holds at most one line per product id, every line with count >= 1.
// Totals are folds over the current lines, never cached, and always fit in
// an int64. Misuse (missing id, non-positive count, a total that would
// overflow) is logged and ignored rather than returned.
type Cart struct {
	mu    sync.Mutex
	lines []Line
	snaps Snapshots
	log   *zap.Logger
}

func New(snaps Snapshots, log *zap.Logger) *Cart {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cart{snaps: snaps, log: log}
}

// Restore loads the last snapshot. Missing or corrupt data leaves the cart
// empty; nothing is returned to the caller.
func (c *Cart) Restore(ctx context.Context) {
	if c.snaps == nil {
		return
	}

	raw, err := c.snaps.Get(ctx, SnapshotKey)
	if errors.Is(err, localstore.ErrNotFound) {
		return
	}
	if err != nil {
		c.log.Warn("cart snapshot read failed", zap.Error(err))
		return
	}

	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		c.log.Warn("cart snapshot corrupt, starting empty", zap.Error(err))
		return
	}

	lines = normalize(lines, c.log)
	if _, ok := checkedTotal(lines); !ok {
		c.log.Warn("cart snapshot total overflows, starting empty")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = lines
}

func (c *Cart) Add(p catalog.Product, count int) {
	if p.ID == "" || count <= 0 {
		c.log.Warn("invalid cart item or count <= 0",
			zap.String("product_id", p.ID),
			zap.Int("count", count),
		)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := slices.Clone(c.lines)
	if i := c.indexOf(p.ID); i >= 0 {
		if next[i].Count > math.MaxInt-count {
			c.rejectOverflow(p.ID, count)
			return
		}
		next[i].Count += count
	} else {
		next = append(next, Line{Product: p, Count: count})
	}
	if _, ok := checkedTotal(next); !ok {
		c.rejectOverflow(p.ID, count)
		return
	}
	c.lines = next
	c.persist()
}

func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(productID)
	c.persist()
}

func (c *Cart) SetQuantity(productID string, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if count <= 0 {
		c.remove(productID)
	} else if i := c.indexOf(productID); i >= 0 {
		next := slices.Clone(c.lines)
		next[i].Count = count
		if _, ok := checkedTotal(next); !ok {
			c.rejectOverflow(productID, count)
			return
		}
		c.lines = next
	}
	c.persist()
}

// Subtract takes ordered lines out of the cart: each matching line loses the
// ordered count and goes away once nothing is left of it. Lines added or
// raised after the order was drafted keep the difference.
func (c *Cart) Subtract(ordered []Line) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, o := range ordered {
		i := c.indexOf(o.ID)
		if i < 0 {
			continue
		}
		if c.lines[i].Count <= o.Count {
			c.remove(o.ID)
			continue
		}
		c.lines[i].Count -= o.Count
	}
	c.persist()
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.persist()
}

func (c *Cart) Contains(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexOf(productID) >= 0
}

func (c *Cart) QuantityOf(productID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i].Count
	}
	return 0
}

func (c *Cart) TotalUnits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalUnits(c.lines)
}

func (c *Cart) TotalPrice() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalPrice(c.lines)
}

func (c *Cart) LineCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

func (c *Cart) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Summary{
		TotalItems: totalUnits(c.lines),
		TotalPrice: totalPrice(c.lines),
		ItemCount:  len(c.lines),
	}
}

// Lines returns a copy in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) indexOf(id string) int {
	for i := range c.lines {
		if c.lines[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) remove(id string) {
	out := c.lines[:0]
	for _, l := range c.lines {
		if l.ID != id {
			out = append(out, l)
		}
	}
	c.lines = out
}

func (c *Cart) rejectOverflow(productID string, count int) {
	c.log.Warn("cart total would overflow",
		zap.String("product_id", productID),
		zap.Int("count", count),
	)
}

// persist runs under c.mu so snapshots land in mutation order.
func (c *Cart) persist() {
	if c.snaps == nil {
		return
	}

	lines := c.lines
	if lines == nil {
		lines = []Line{}
	}
	raw, err := json.Marshal(lines)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err = c.snaps.Put(ctx, SnapshotKey, raw)
		cancel()
	}
	if err != nil {
		c.log.Error("cart snapshot not saved",
			zap.Error(fmt.Errorf("%w: %v", storeerr.ErrPersistenceWrite, err)),
		)
	}
}

func totalUnits(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Count
	}
	return n
}

func totalPrice(lines []Line) int64 {
	total, _ := checkedTotal(lines)
	return total
}

// LineCost is price*count, false when the product does not fit in an int64.
func LineCost(price int64, count int) (int64, bool) {
	if price < 0 || count < 0 {
		return 0, false
	}
	if price != 0 && int64(count) > math.MaxInt64/price {
		return 0, false
	}
	return price * int64(count), true
}

func checkedTotal(lines []Line) (int64, bool) {
	var total int64
	for _, l := range lines {
		line, ok := LineCost(l.Price, l.Count)
		if !ok || total > math.MaxInt64-line {
			return 0, false
		}
		total += line
	}
	return total, true
}

func normalize(lines []Line, log *zap.Logger) []Line {
	out := make([]Line, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.ID == "" || l.Count <= 0 {
			log.Warn("dropping invalid cart line from snapshot", zap.String("product_id", l.ID))
			continue
		}
		if i, ok := index[l.ID]; ok {
			out[i].Count += l.Count
			continue
		}
		index[l.ID] = len(out)
		out = append(out, l)
	}
	return out
}
