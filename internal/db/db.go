package db

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"library-chat/internal/config"
)

// DocumentTitle is one registered document in the title table.
type DocumentTitle struct {
	bun.BaseModel `bun:"table:library_documents,alias:ld"`
	Title         string `bun:"title,pk"`
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.URL + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Key))), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func InitDB(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*DocumentTitle)(nil)).IfNotExists().Exec(ctx)
	return err
}

// TitleList is a registry.DurableList backed by the title table.
type TitleList struct {
	db *bun.DB
}

func NewTitleList(db *bun.DB) *TitleList {
	return &TitleList{db: db}
}

func (l *TitleList) Load(ctx context.Context) ([]string, error) {
	var rows []DocumentTitle
	err := l.db.NewSelect().
		Model(&rows).
		Order("title ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(rows))
	for _, row := range rows {
		titles = append(titles, row.Title)
	}
	return titles, nil
}

// Save replaces the stored list with titles in one transaction.
func (l *TitleList) Save(ctx context.Context, titles []string) error {
	return l.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*DocumentTitle)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return err
		}
		if len(titles) == 0 {
			return nil
		}
		rows := make([]DocumentTitle, 0, len(titles))
		for _, title := range titles {
			rows = append(rows, DocumentTitle{Title: title})
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
}
