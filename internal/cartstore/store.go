// Package cartstore holds the shopping cart in memory and mirrors every change
// to a key-value store. Quantities are checked against the catalog's stock
// before a change is committed.
package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/nikolayk812/cartstore-demo/internal/domain"
	"github.com/nikolayk812/cartstore-demo/internal/port"
	"github.com/sirupsen/logrus"
)

const DefaultKey = "@RocketShoes:cart"

type UpdateProductAmount struct {
	ProductID int64 `json:"productId"`
	Amount    int   `json:"amount"`
}

// Store is safe for concurrent use. Mutations are serialised so that every
// read-modify-write sees the result of the previous one; Cart never waits for
// an in-flight catalog lookup.
type Store struct {
	// ops admits one mutation at a time. Only its holder writes cart.
	ops chan struct{}

	mu   sync.RWMutex
	cart domain.Cart

	kv       port.KeyValueStore
	catalog  port.Catalog
	notifier port.Notifier
	key      string
	log      logrus.FieldLogger
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// New loads the cart stored under the configured key. A missing entry yields an
// empty cart; an entry that cannot be decoded fails with domain.ErrCorruptCart.
func New(ctx context.Context, kv port.KeyValueStore, catalog port.Catalog, notifier port.Notifier, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv is nil")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog is nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is nil")
	}

	s := &Store{
		ops:      make(chan struct{}, 1),
		kv:       kv,
		catalog:  catalog,
		notifier: notifier,
		key:      DefaultKey,
		log:      logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	cart, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.load: %w", err)
	}
	s.cart = cart

	s.log.WithFields(logrus.Fields{"key": s.key, "size": cart.Size()}).Info("cart loaded")

	return s, nil
}

func (s *Store) load(ctx context.Context) (domain.Cart, error) {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("kv.Get: %w", err)
	}
	if !found {
		return domain.Cart{Items: []domain.Product{}}, nil
	}

	var items []domain.Product
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return domain.Cart{}, fmt.Errorf("%w: %w", domain.ErrCorruptCart, err)
	}
	if items == nil {
		items = []domain.Product{}
	}

	cart := domain.Cart{Items: items}
	if err := cart.Validate(); err != nil {
		return domain.Cart{}, fmt.Errorf("%w: %w", domain.ErrCorruptCart, err)
	}

	return cart, nil
}

// Cart returns a copy of the current cart.
func (s *Store) Cart() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cart.Clone()
}

func (s *Store) AddProduct(ctx context.Context, productID int64) error {
	err := s.acquire(ctx)
	if err == nil {
		defer s.release()
		err = s.addProduct(ctx, productID)
	}
	if err != nil {
		s.fail(domain.MsgAddProduct, "AddProduct", productID, err)
		return fmt.Errorf("AddProduct[%d]: %w", productID, err)
	}

	return nil
}

func (s *Store) addProduct(ctx context.Context, productID int64) error {
	product, found := s.cart.Find(productID)

	amount := 1
	if found {
		amount = product.Amount + 1
	} else {
		fetched, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("catalog.GetProduct: %w", err)
		}
		product = fetched
	}

	if err := s.checkStock(ctx, productID, amount); err != nil {
		return err
	}

	product.Amount = amount

	return s.commit(ctx, s.cart.Upsert(product))
}

func (s *Store) RemoveProduct(ctx context.Context, productID int64) error {
	err := s.acquire(ctx)
	if err == nil {
		defer s.release()
		err = s.removeProduct(ctx, productID)
	}
	if err != nil {
		s.fail(domain.MsgRemoveProduct, "RemoveProduct", productID, err)
		return fmt.Errorf("RemoveProduct[%d]: %w", productID, err)
	}

	return nil
}

func (s *Store) removeProduct(ctx context.Context, productID int64) error {
	if _, found := s.cart.Find(productID); !found {
		return domain.ErrProductNotFound
	}

	return s.commit(ctx, s.cart.Remove(productID))
}

// UpdateProductAmount sets the amount of a product already in the cart.
// Non-positive amounts are ignored.
func (s *Store) UpdateProductAmount(ctx context.Context, update UpdateProductAmount) error {
	if update.Amount <= 0 {
		return nil
	}

	err := s.acquire(ctx)
	if err == nil {
		defer s.release()
		err = s.updateProductAmount(ctx, update)
	}
	if err != nil {
		s.fail(domain.MsgUpdateAmount, "UpdateProductAmount", update.ProductID, err)
		return fmt.Errorf("UpdateProductAmount[%d]: %w", update.ProductID, err)
	}

	return nil
}

func (s *Store) updateProductAmount(ctx context.Context, update UpdateProductAmount) error {
	product, found := s.cart.Find(update.ProductID)
	if !found {
		return domain.ErrProductNotFound
	}

	if err := s.checkStock(ctx, update.ProductID, update.Amount); err != nil {
		return err
	}

	product.Amount = update.Amount

	return s.commit(ctx, s.cart.Upsert(product))
}

// Clear empties the cart and removes its stored entry.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		s.fail(domain.MsgRemoveProduct, "Clear", 0, err)
		return fmt.Errorf("Clear: %w", err)
	}
	defer s.release()

	if _, err := s.kv.Delete(ctx, s.key); err != nil {
		s.fail(domain.MsgRemoveProduct, "Clear", 0, err)
		return fmt.Errorf("Clear: kv.Delete: %w", err)
	}

	s.mu.Lock()
	s.cart = domain.Cart{Items: []domain.Product{}}
	s.mu.Unlock()

	s.log.WithField("key", s.key).Debug("cart cleared")

	return nil
}

// acquire waits for the mutation slot or for ctx to be done.
func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.ops <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() {
	<-s.ops
}

func (s *Store) checkStock(ctx context.Context, productID int64, amount int) error {
	stock, err := s.catalog.GetStock(ctx, productID)
	if err != nil {
		return fmt.Errorf("catalog.GetStock: %w", err)
	}

	if stock.Amount < amount {
		s.notifier.Notify(domain.MsgOutOfStock)
		return fmt.Errorf("%w: requested %d, available %d", domain.ErrOutOfStock, amount, stock.Amount)
	}

	return nil
}

// commit writes next to the kv store and only then makes it current, so a
// failed write leaves both copies as they were.
func (s *Store) commit(ctx context.Context, next domain.Cart) error {
	raw, err := json.Marshal(next.Items)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := s.kv.Set(ctx, s.key, string(raw)); err != nil {
		return fmt.Errorf("kv.Set: %w", err)
	}

	s.mu.Lock()
	s.cart = next
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"key": s.key, "size": next.Size()}).Debug("cart committed")

	return nil
}

func (s *Store) fail(message, op string, productID int64, err error) {
	s.notifier.Notify(message)

	entry := s.log.WithFields(logrus.Fields{"op": op, "product_id": productID}).WithError(err)
	switch {
	case errors.Is(err, domain.ErrOutOfStock), errors.Is(err, domain.ErrProductNotFound):
		entry.Info("cart operation rejected")
		return
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		entry.Info("cart operation abandoned")
		return
	}
	entry.Error("cart operation failed")
}
