package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cargo-build/cargo-sdk-go/config"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate"
	migratedb "github.com/golang-migrate/migrate/database"
	"github.com/golang-migrate/migrate/database/mysql"
	"github.com/golang-migrate/migrate/database/sqlite3"
	_ "github.com/golang-migrate/migrate/source/file"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sisu-network/lib/log"
	"go.uber.org/atomic"
)

const (
	DriverSqlite = "sqlite3"
	DriverMysql  = "mysql"

	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusTimeout   = "timeout"
	TxStatusUnwatched = "unwatched"
)

var ErrClosed = errors.New("database is closed")

// TxRecord is the last known lifecycle status of a tracked transaction.
type TxRecord struct {
	Hash        string
	Status      string
	BlockHeight uint64
	UpdatedAt   int64
}

// Database is the local session store: auth tokens, login signatures, contract ABIs and the status
// of tracked transactions.
type Database interface {
	Init() error
	Close() error

	SaveToken(account, token string) error
	LoadToken(account string) (string, error)
	SaveSignature(account, signature string) error
	LoadSignature(account string) (string, error)
	ClearSession(account string) error

	SaveAbi(key, abi, address string) error
	LoadAbi(key string) (string, string, error)

	// SaveTxStatus is asynchronous.
	SaveTxStatus(record *TxRecord)
	LoadTxs(status string) ([]*TxRecord, error)
}

type DefaultDatabase struct {
	cfg      *config.Cargo
	db       *sql.DB
	saveTxCh chan *TxRecord
	doneCh   chan struct{}
	closed   *atomic.Bool
	lock     *sync.RWMutex
}

type dbLogger struct {
}

func (loggger *dbLogger) Printf(format string, v ...interface{}) {
	log.Verbosef(format, v...)
}

func (loggger *dbLogger) Verbose() bool {
	return true
}

func NewDb(cfg *config.Cargo) Database {
	return &DefaultDatabase{
		cfg:      cfg,
		saveTxCh: make(chan *TxRecord, 100),
		doneCh:   make(chan struct{}),
		closed:   atomic.NewBool(false),
		lock:     &sync.RWMutex{},
	}
}

var memoryDbCount = atomic.NewUint64(0)

func (d *DefaultDatabase) Connect() error {
	switch d.cfg.DbDriver {
	case DriverMysql:
		return d.connectMysql()
	case DriverSqlite, "":
		return d.connectSqlite()
	}

	return fmt.Errorf("unknown db driver %s", d.cfg.DbDriver)
}

func (d *DefaultDatabase) connectSqlite() error {
	path := d.cfg.DbPath
	if path == "" || path == ":memory:" {
		// Every connection of the pool has to see the same in-memory database.
		path = fmt.Sprintf("file:cargo-%d?mode=memory&cache=shared", memoryDbCount.Inc())
	}

	database, err := sql.Open(DriverSqlite, path)
	if err != nil {
		return err
	}

	// sqlite supports a single writer.
	database.SetMaxOpenConns(1)

	d.db = database
	log.Info("Sqlite db is opened at ", d.cfg.DbPath)
	return nil
}

func (d *DefaultDatabase) connectMysql() error {
	host := d.cfg.DbHost
	if host == "" {
		return fmt.Errorf("DB host cannot be empty")
	}

	port := d.cfg.DbPort

	username := d.cfg.DbUsername
	password := d.cfg.DbPassword
	schema := d.cfg.DbSchema

	// Connect to the db
	url := fmt.Sprintf("%s:%s@tcp(%s:%d)/", username, password, host, port)
	database, err := sql.Open(DriverMysql, url)
	if err != nil {
		return err
	}
	_, err = database.Exec("CREATE DATABASE IF NOT EXISTS " + schema)
	if err != nil {
		return err
	}
	database.Close()

	database, err = sql.Open(DriverMysql, fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", username, password, host, port, schema))
	if err != nil {
		return err
	}

	d.db = database
	log.Info("Db is connected successfully")
	return nil
}

func (d *DefaultDatabase) DoMigration() error {
	var driver migratedb.Driver
	var err error

	driverName := d.cfg.DbDriver
	if driverName == DriverMysql {
		driver, err = mysql.WithInstance(d.db, &mysql.Config{})
	} else {
		driverName = DriverSqlite
		driver, err = sqlite3.WithInstance(d.db, &sqlite3.Config{})
	}
	if err != nil {
		return err
	}

	tmpDir, err := MigrationsTempDir()
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	m, err := migrate.NewWithDatabaseInstance("file://"+tmpDir, driverName, driver)
	if err != nil {
		return err
	}

	m.Log = &dbLogger{}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}

func (d *DefaultDatabase) Init() error {
	err := d.Connect()
	if err != nil {
		log.Error("Failed to connect to DB. Err =", err)
		return err
	}

	err = d.DoMigration()
	if err != nil {
		return err
	}

	go d.listen()

	return nil
}

func (d *DefaultDatabase) Close() error {
	if d.closed.Swap(true) {
		return nil
	}

	d.lock.Lock()
	close(d.saveTxCh)
	d.lock.Unlock()

	if d.db == nil {
		return nil
	}

	<-d.doneCh
	return d.db.Close()
}

// Listen to request to save into datbase.
func (d *DefaultDatabase) listen() {
	defer close(d.doneCh)

	for record := range d.saveTxCh {
		err := d.doSaveTx(record)
		if err != nil {
			log.Error("Cannot save into db, err = ", err)
		}
	}
}

func (d *DefaultDatabase) doSaveTx(record *TxRecord) error {
	updatedAt := record.UpdatedAt
	if updatedAt == 0 {
		updatedAt = time.Now().Unix()
	}

	_, err := d.db.Exec("REPLACE INTO transactions (tx_hash, status, block_height, updated_at) VALUES (?, ?, ?, ?)",
		record.Hash, record.Status, record.BlockHeight, updatedAt)

	return err
}

func (d *DefaultDatabase) SaveTxStatus(record *TxRecord) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.closed.Load() {
		log.Warnf("Dropping status %s of tx %s, db is closed", record.Status, record.Hash)
		return
	}

	d.saveTxCh <- record
}

func (d *DefaultDatabase) LoadTxs(status string) ([]*TxRecord, error) {
	rows, err := d.db.Query("SELECT tx_hash, status, block_height, updated_at FROM transactions WHERE status=? ORDER BY updated_at, tx_hash", status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*TxRecord, 0)
	for rows.Next() {
		record := &TxRecord{}
		if err := rows.Scan(&record.Hash, &record.Status, &record.BlockHeight, &record.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

func (d *DefaultDatabase) SaveToken(account, token string) error {
	_, err := d.db.Exec("REPLACE INTO session_tokens (account, token) VALUES (?, ?)", account, token)
	return err
}

func (d *DefaultDatabase) LoadToken(account string) (string, error) {
	return d.loadString("SELECT token FROM session_tokens WHERE account=?", account)
}

func (d *DefaultDatabase) SaveSignature(account, signature string) error {
	_, err := d.db.Exec("REPLACE INTO signatures (account, signature) VALUES (?, ?)", account, signature)
	return err
}

func (d *DefaultDatabase) LoadSignature(account string) (string, error) {
	return d.loadString("SELECT signature FROM signatures WHERE account=?", account)
}

func (d *DefaultDatabase) ClearSession(account string) error {
	if _, err := d.db.Exec("DELETE FROM session_tokens WHERE account=?", account); err != nil {
		return err
	}

	_, err := d.db.Exec("DELETE FROM signatures WHERE account=?", account)
	return err
}

func (d *DefaultDatabase) SaveAbi(key, abi, address string) error {
	_, err := d.db.Exec("REPLACE INTO contract_abis (cache_key, abi, address) VALUES (?, ?, ?)", key, abi, address)
	return err
}

// LoadAbi returns empty strings if key is not cached.
func (d *DefaultDatabase) LoadAbi(key string) (string, string, error) {
	var abi, address string
	err := d.db.QueryRow("SELECT abi, address FROM contract_abis WHERE cache_key=?", key).Scan(&abi, &address)
	if err == sql.ErrNoRows {
		return "", "", nil
	}

	return abi, address, err
}

// loadString returns "" if the query has no row.
func (d *DefaultDatabase) loadString(query string, args ...interface{}) (string, error) {
	var ret string
	err := d.db.QueryRow(query, args...).Scan(&ret)
	if err == sql.ErrNoRows {
		return "", nil
	}

	return ret, err
}
