// repositories/db.go

package repositories

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	// DBConnection is the process-wide database handle. Use InitDB and CloseDB
	// rather than assigning it directly.
	DBConnection *gorm.DB
	dbMu         sync.Mutex
)

// InitDB connects once and returns the shared handle on every later call.
// After CloseDB it connects again.
func InitDB(driver, dsn string) (*gorm.DB, error) {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DBConnection != nil {
		return DBConnection, nil
	}

	db, err := Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	logrus.WithField("driver", driver).Info("Database connection established")
	DBConnection = db
	return db, nil
}

// CloseDB releases the shared handle. Calling it without an open handle is a no-op.
func CloseDB() error {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DBConnection == nil {
		return nil
	}

	sqlDB, err := DBConnection.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	DBConnection = nil
	return nil
}
