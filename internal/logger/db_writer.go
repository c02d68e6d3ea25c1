package logger

import (
	"context"
	"fmt"
	"time"

	"crm-reports/internal/config"
	"crm-reports/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to the background worker
type LogEntry struct {
	Level    zapcore.Level
	Message  string
	TenantID string
	ActorID  string
	Caller   string
}

type serviceLog struct {
	Message   string    `bson:"message"`
	Level     string    `bson:"level"`
	TenantID  string    `bson:"tenant_id,omitempty"`
	ActorID   string    `bson:"actor_id,omitempty"`
	Caller    string    `bson:"caller,omitempty"`
	AppId     string    `bson:"app_id"`
	CreatedAt time.Time `bson:"created_at"`
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	db      *mongo.Database
	logChan chan LogEntry
	appId   string
}

// NewDBLogWriter initializes the worker
func NewDBLogWriter(mongodb *database.MongodbDB, cfg *config.Config) *DBLogWriter {
	writer := &DBLogWriter{
		db:      mongodb.DB,
		logChan: make(chan LogEntry, 1000),
		appId:   cfg.AppId,
	}

	go writer.processLogs()

	return writer
}

// AddLog is called by the Zap hook
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
	default:
		// Channel full: drop the entry rather than block a request
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

func (w *DBLogWriter) processLogs() {
	for entry := range w.logChan {
		record := serviceLog{
			Message:   entry.Message,
			Level:     entry.Level.String(),
			TenantID:  entry.TenantID,
			ActorID:   entry.ActorID,
			Caller:    entry.Caller,
			AppId:     w.appId,
			CreatedAt: time.Now().UTC(),
		}

		// Insert errors are ignored so logging can never take the app down
		w.db.Collection("service_logs").InsertOne(context.Background(), record)
	}
}
