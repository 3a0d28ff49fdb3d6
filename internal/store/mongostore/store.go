package mongostore

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cleared-dev/bote/internal/model"
	"github.com/cleared-dev/bote/internal/store"
)

// Store implements store.Store on two MongoDB collections. Every mutation
// is a single-document write.
type Store struct {
	provider   CollectionProvider
	now        func() time.Time
	newID      func() string
	disconnect func(ctx context.Context) error
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides document ID generation.
func WithIDFunc(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

// New creates a Store over provider.
func New(provider CollectionProvider, opts ...Option) *Store {
	s := &Store{provider: provider, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, store.ErrUnavailable, err)
}

// ListTransactions returns every transaction, newest first.
func (s *Store) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	docs, err := s.provider.Collection(TransactionsCollection).FindAll(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return nil, unavailable("listing transactions", err)
	}
	txs := make([]model.Transaction, 0, len(docs))
	for _, doc := range docs {
		txs = append(txs, decodeTransaction(doc))
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})
	return txs, nil
}

// CreateTransaction inserts a transaction and returns its document ID.
func (s *Store) CreateTransaction(ctx context.Context, nt store.NewTransaction) (string, error) {
	docID := s.newID()
	doc := bson.M{
		"_id":            docID,
		"transaction_id": nt.TransactionID,
		"type":           string(nt.Type),
		"amount":         nt.Amount.StringFixed(2),
		"member_id":      nt.MemberID,
		"verified":       nt.Verified,
		"bank_id":        nt.BankID,
		"description":    nt.Description,
		"timestamp":      s.now().UTC(),
		"is_guest":       nt.IsGuest,
	}
	if _, err := s.provider.Collection(TransactionsCollection).InsertOne(ctx, doc); err != nil {
		return "", unavailable("inserting transaction", err)
	}
	return docID, nil
}

// UpdateTransaction sets the patched fields on one document.
func (s *Store) UpdateTransaction(ctx context.Context, docID string, patch store.TransactionPatch) error {
	set := patchFields(patch)
	if len(set) == 0 {
		return nil
	}
	res, err := s.provider.Collection(TransactionsCollection).UpdateOne(ctx,
		bson.M{"_id": docID}, bson.M{"$set": set})
	if err != nil {
		return unavailable("updating transaction", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, docID)
	}
	return nil
}

// DeleteTransaction removes one document.
func (s *Store) DeleteTransaction(ctx context.Context, docID string) error {
	res, err := s.provider.Collection(TransactionsCollection).DeleteOne(ctx, bson.M{"_id": docID})
	if err != nil {
		return unavailable("deleting transaction", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, docID)
	}
	return nil
}

// TransactionIDSuffixExists reports whether any transaction ID ends with
// "-" + suffix.
func (s *Store) TransactionIDSuffixExists(ctx context.Context, suffix string) (bool, error) {
	filter := bson.M{"transaction_id": bson.M{"$regex": "-" + regexp.QuoteMeta(suffix) + "$"}}
	n, err := s.provider.Collection(TransactionsCollection).CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, unavailable("checking transaction ID suffix", err)
	}
	return n > 0, nil
}

// ListMembers returns the roster ordered by member ID.
func (s *Store) ListMembers(ctx context.Context) ([]model.Member, error) {
	docs, err := s.provider.Collection(MembersCollection).FindAll(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, unavailable("listing members", err)
	}
	list := make([]model.Member, 0, len(docs))
	for _, doc := range docs {
		list = append(list, decodeMember(doc))
	}
	return list, nil
}

// PutMember upserts a member keyed by ID.
func (s *Store) PutMember(ctx context.Context, m model.Member) error {
	favorites := m.FavoriteProducts
	if favorites == nil {
		favorites = []string{}
	}
	set := bson.M{
		"name":              m.Name,
		"alias":             m.Alias,
		"bizum":             m.Bizum,
		"favorite_products": favorites,
		"alcohol_portion":   string(m.AlcoholPortion),
		"pin_hash":          m.PINHash,
	}
	_, err := s.provider.Collection(MembersCollection).UpdateOne(ctx,
		bson.M{"_id": m.ID}, bson.M{"$set": set}, options.Update().SetUpsert(true))
	if err != nil {
		return unavailable("saving member", err)
	}
	return nil
}

// Close disconnects the client, if the store owns one.
func (s *Store) Close(ctx context.Context) error {
	if s.disconnect == nil {
		return nil
	}
	if err := s.disconnect(ctx); err != nil {
		return fmt.Errorf("disconnecting from MongoDB: %w", err)
	}
	return nil
}

func patchFields(p store.TransactionPatch) bson.M {
	set := bson.M{}
	if p.Type != nil {
		set["type"] = string(*p.Type)
	}
	if p.Amount != nil {
		set["amount"] = p.Amount.StringFixed(2)
	}
	if p.MemberID != nil {
		set["member_id"] = *p.MemberID
	}
	if p.Verified != nil {
		set["verified"] = *p.Verified
	}
	if p.BankID != nil {
		set["bank_id"] = *p.BankID
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.IsGuest != nil {
		set["is_guest"] = *p.IsGuest
	}
	return set
}

var _ store.Store = (*Store)(nil)
