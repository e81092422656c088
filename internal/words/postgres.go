package words

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scythe504/leaguedraw/internal"
)

var ErrUnexpectedDatabase = errors.New("unexpected database error")

// Table names are never taken from input; every query is fixed here.
type categoryQueries struct {
	lookup string
	pool   string
}

var queries = map[string]categoryQueries{
	CategoryChampions: {
		lookup: `SELECT id::text, word, image, ''::text, ''::text FROM champions WHERE id::text = $1`,
		pool:   `SELECT id::text FROM champions ORDER BY id`,
	},
	CategoryItems: {
		lookup: `SELECT id::text, word, image, ''::text, ''::text FROM items WHERE id::text = $1`,
		pool: `SELECT items.id::text FROM items
			WHERE EXISTS (
				SELECT 1 FROM item_maps JOIN maps ON maps.id = item_maps.map
				WHERE item_maps.item = items.id AND maps.name = 'Summoner''s Rift'
			) ORDER BY items.id`,
	},
	CategorySpells: {
		lookup: `SELECT id::text, word, image, champion, "key" FROM spells WHERE id::text = $1`,
		pool:   `SELECT id::text FROM spells ORDER BY id`,
	},
	CategorySkins: {
		lookup: `SELECT id::text, word, image, champion, ''::text FROM skins WHERE id::text = $1`,
		pool:   `SELECT id::text FROM skins ORDER BY id`,
	},
}

type PostgresBank struct {
	pool *pgxpool.Pool
}

func NewPostgresBank(ctx context.Context, connString string) (*PostgresBank, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresBank{pool: pool}, nil
}

func (pb *PostgresBank) Lookup(ctx context.Context, choice internal.WordChoice) (internal.WordData, error) {
	q, ok := queries[choice.Category]
	if !ok {
		return internal.WordData{}, fmt.Errorf("%w: %q", ErrUnknownCategory, choice.Category)
	}

	row := internal.WordData{Category: choice.Category}
	err := pb.pool.QueryRow(ctx, q.lookup, choice.Id).
		Scan(&row.Id, &row.Word, &row.Image, &row.Parent, &row.Key)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return internal.WordData{}, fmt.Errorf("%w: %s/%s", ErrWordNotFound, choice.Category, choice.Id)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return internal.WordData{}, err
		default:
			return internal.WordData{}, fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
		}
	}

	return row, nil
}

func (pb *PostgresBank) Pool(ctx context.Context, categories []string) ([]internal.WordChoice, error) {
	var pool []internal.WordChoice
	seen := make(map[string]bool, len(categories))

	for _, category := range categories {
		q, ok := queries[category]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
		}
		if seen[category] {
			continue
		}
		seen[category] = true

		rows, err := pb.pool.Query(ctx, q.pool)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
		}
		ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
		}
		for _, id := range ids {
			pool = append(pool, internal.WordChoice{Id: id, Category: category})
		}
	}

	return pool, nil
}

func (pb *PostgresBank) Health(ctx context.Context) error {
	return pb.pool.Ping(ctx)
}

func (pb *PostgresBank) Close() {
	pb.pool.Close()
}
