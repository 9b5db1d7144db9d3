package repository

import (
	"context"
	"fmt"
	"time"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
	applogger "FinDash/pkg/logger"
	pkgmongo "FinDash/pkg/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements DashboardStore on MongoDB, one collection per
// document kind.
type MongoStore struct {
	client *pkgmongo.Client
	l      *applogger.Logger
}

func NewMongoStore(client *pkgmongo.Client, l *applogger.Logger) *MongoStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &MongoStore{client: client, l: l}
}

func (s *MongoStore) collection(c models.Collection) *mongo.Collection {
	return s.client.Collection(string(c))
}

func (s *MongoStore) ListKPIs(ctx context.Context) ([]models.KPI, error) {
	out := []models.KPI{}
	if err := s.findAll(ctx, models.CollectionKPIs, options.Find(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	out := []models.Product{}
	if err := s.findAll(ctx, models.CollectionProducts, options.Find(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdOn", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	out := []models.Transaction{}
	if err := s.findAll(ctx, models.CollectionTransactions, opts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) findAll(ctx context.Context, c models.Collection, opts *options.FindOptions, dest interface{}) error {
	start := time.Now()
	cur, err := s.collection(c).Find(ctx, bson.D{}, opts)
	if err != nil {
		s.l.Error("mongo find error", applogger.String("collection", string(c)), applogger.Error(err))
		return fmt.Errorf("find %s: %w", c, err)
	}
	if err := cur.All(ctx, dest); err != nil {
		return fmt.Errorf("decode %s: %w", c, err)
	}
	s.l.Debug("mongo find ok",
		applogger.String("collection", string(c)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

// ReplaceAll drops the three collections and inserts data.
func (s *MongoStore) ReplaceAll(ctx context.Context, data domrepo.SeedData) error {
	batches := []struct {
		c    models.Collection
		docs []interface{}
	}{
		{models.CollectionKPIs, toDocuments(data.KPIs)},
		{models.CollectionProducts, toDocuments(data.Products)},
		{models.CollectionTransactions, toDocuments(data.Transactions)},
	}

	for _, b := range batches {
		coll := s.collection(b.c)
		if err := coll.Drop(ctx); err != nil {
			return fmt.Errorf("drop %s: %w", b.c, err)
		}
		if len(b.docs) == 0 {
			continue
		}
		res, err := coll.InsertMany(ctx, b.docs)
		if err != nil {
			return fmt.Errorf("insert %s: %w", b.c, err)
		}
		s.l.Info("mongo collection replaced",
			applogger.String("collection", string(b.c)),
			applogger.Int("documents", len(res.InsertedIDs)),
		)
	}
	return nil
}

func (s *MongoStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func toDocuments[T any](items []T) []interface{} {
	docs := make([]interface{}, len(items))
	for i := range items {
		docs[i] = items[i]
	}
	return docs
}
