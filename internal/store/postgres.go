package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
	"github.com/adukkipati/pdfrag/internal/ragerror"
	"github.com/adukkipati/pdfrag/pkg/applog"
)

var (
	dbInstance *gorm.DB
	once       sync.Once
	initErr    error
)

type postgresStore struct {
	db     *gorm.DB
	logger *applog.Logger
}

var ErrNotFound = errors.New("record not found")

// GetPostgresStore opens the database connection once, migrates the schema
// and returns the shared store. The connection closes when ctx is cancelled
// at shutdown.
func GetPostgresStore(ctx context.Context, dsn string) (Store, error) {
	once.Do(func() {
		logger := applog.NewLogger("PostgresStore")
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			initErr = fmt.Errorf("could not connect to postgres: %w", err)
			return
		}

		sqlDB, err := db.DB()
		if err != nil {
			initErr = fmt.Errorf("could not access underlying sql.DB: %w", err)
			return
		}
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)

		if err := db.AutoMigrate(
			&ragmodel.Document{},
			&ragmodel.Session{},
			&ragmodel.Message{},
			&ragmodel.QueryMetric{},
		); err != nil {
			initErr = fmt.Errorf("schema migration failed: %w", err)
			return
		}

		logger.Info("connected to postgres and migrated schema")
		dbInstance = db
		go closeOnShutdown(ctx, db, logger)
	})

	if initErr != nil {
		return nil, initErr
	}
	return &postgresStore{db: dbInstance, logger: applog.NewLogger("PostgresStore")}, nil
}

func closeOnShutdown(ctx context.Context, db *gorm.DB, logger *applog.Logger) {
	<-ctx.Done()
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("could not close postgres connection", "error", err)
	}
}

func storeErr(err error) error {
	return ragerror.New(ragerror.ErrStore, ragerror.StageStore, err)
}

func (s *postgresStore) CreateDocument(ctx context.Context, doc *ragmodel.Document) error {
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *postgresStore) SetDocumentStatus(ctx context.Context, docID string, status ragmodel.DocStatus, pageCount int) error {
	updates := map[string]any{"status": status}
	if status == ragmodel.DocCompleted {
		updates["page_count"] = pageCount
	}
	res := s.db.WithContext(ctx).Model(&ragmodel.Document{}).Where("id = ?", docID).Updates(updates)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return storeErr(fmt.Errorf("document %s: %w", docID, ErrNotFound))
	}
	return nil
}

func (s *postgresStore) GetDocument(ctx context.Context, docID string) (ragmodel.Document, error) {
	var doc ragmodel.Document
	err := s.db.WithContext(ctx).First(&doc, "id = ?", docID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return doc, storeErr(fmt.Errorf("document %s: %w", docID, ErrNotFound))
	}
	if err != nil {
		return doc, storeErr(err)
	}
	return doc, nil
}

func (s *postgresStore) ListDocuments(ctx context.Context) ([]ragmodel.Document, error) {
	var docs []ragmodel.Document
	if err := s.db.WithContext(ctx).Order("upload_time desc").Find(&docs).Error; err != nil {
		return nil, storeErr(err)
	}
	return docs, nil
}

func (s *postgresStore) DeleteDocument(ctx context.Context, docID string) error {
	res := s.db.WithContext(ctx).Delete(&ragmodel.Document{}, "id = ?", docID)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return storeErr(fmt.Errorf("document %s: %w", docID, ErrNotFound))
	}
	return nil
}

func (s *postgresStore) EnsureSession(ctx context.Context, sessionID string) (ragmodel.Session, error) {
	var session ragmodel.Session
	err := s.db.WithContext(ctx).
		Where(ragmodel.Session{SessionID: sessionID}).
		FirstOrCreate(&session).Error
	if err != nil {
		return session, storeErr(err)
	}
	return session, nil
}

func (s *postgresStore) ListSessions(ctx context.Context) ([]ragmodel.Session, error) {
	var sessions []ragmodel.Session
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&sessions).Error; err != nil {
		return nil, storeErr(err)
	}
	return sessions, nil
}

func (s *postgresStore) AppendMessage(ctx context.Context, msg *ragmodel.Message) error {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *postgresStore) ListMessages(ctx context.Context, sessionID string) ([]ragmodel.Message, error) {
	var msgs []ragmodel.Message
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp asc").
		Find(&msgs).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return msgs, nil
}

func (s *postgresStore) ClearSession(ctx context.Context, sessionID string) error {
	if err := s.db.WithContext(ctx).Delete(&ragmodel.Message{}, "session_id = ?", sessionID).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *postgresStore) RecordMetric(ctx context.Context, metric *ragmodel.QueryMetric) error {
	if err := s.db.WithContext(ctx).Create(metric).Error; err != nil {
		return storeErr(err)
	}
	return nil
}
