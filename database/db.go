package database

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/swing/alert"
	"github.com/dnldd/swing/risk"
	"github.com/dnldd/swing/shared"
	"github.com/google/uuid"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createWatchlistTableSQL  = "CREATE TABLE IF NOT EXISTS watchlist (symbol TEXT PRIMARY KEY, scantype TEXT, createdon INTEGER)"
	createPositionTableSQL   = "CREATE TABLE IF NOT EXISTS position (id TEXT PRIMARY KEY, symbol TEXT, entryprice REAL, stoploss REAL, target REAL, qty INTEGER, status INTEGER, openedon INTEGER, closedon INTEGER)"
	createAlertTableSQL      = "CREATE TABLE IF NOT EXISTS alert (id TEXT PRIMARY KEY, symbol TEXT, positionid TEXT, type TEXT, severity TEXT, message TEXT, suggestion TEXT, actionrequired INTEGER, createdon INTEGER)"
	createStopUpdateTableSQL = "CREATE TABLE IF NOT EXISTS stopupdate (id TEXT PRIMARY KEY, positionid TEXT, oldstoploss REAL, newstoploss REAL, method TEXT, createdon INTEGER)"
	findWatchlistSQL         = "SELECT symbol, scantype FROM watchlist ORDER BY symbol"
	findOpenPositionsSQL     = "SELECT id, symbol, entryprice, stoploss, target, qty, openedon FROM position WHERE status = ? ORDER BY openedon"
	findPositionSQL          = "SELECT stoploss FROM position WHERE id = ?"
	updateStopLossSQL        = "UPDATE position SET stoploss = ? WHERE id = ? AND stoploss < ?"
	persistStopUpdateSQL     = "INSERT INTO stopupdate(id, positionid, oldstoploss, newstoploss, method, createdon) VALUES(?,?,?,?,?,?)"
	persistAlertSQL          = "INSERT INTO alert(id, symbol, positionid, type, severity, message, suggestion, actionrequired, createdon) VALUES(?,?,?,?,?,?,?,?,?)"
)

// PositionStatus represents the lifecycle state of a stored position.
type PositionStatus int

const (
	Open PositionStatus = iota
	StoppedOut
	Closed
)

// String stringifies the provided position status.
func (s PositionStatus) String() string {
	switch s {
	case Open:
		return "open"
	case StoppedOut:
		return "stopped out"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// WatchlistEntry represents a symbol tracked for new setups.
type WatchlistEntry struct {
	Symbol   string
	ScanType shared.ScanType
}

// Store defines the persistence requirements of the swing monitor.
type Store interface {
	// FetchWatchlist fetches the tracked symbols.
	FetchWatchlist(ctx context.Context) ([]WatchlistEntry, error)
	// FetchOpenPositions fetches open positions, deriving days in trade from the provided time.
	FetchOpenPositions(ctx context.Context, now time.Time) ([]risk.Position, error)
	// UpdateStopLoss raises the stop loss of the provided position.
	UpdateStopLoss(ctx context.Context, positionID string, newSL float64, method string) error
	// PersistAlerts journals the provided alerts.
	PersistAlerts(ctx context.Context, symbol string, positionID string, alerts []alert.Alert) error
}

// DatabaseConfig is the configuration for the database.
type DatabaseConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the database logger.
	Logger *zerolog.Logger
}

// Database represents the database connection.
type Database struct {
	cfg    *DatabaseConfig
	httpc  *http.Client
	client *rqlitehttp.Client
	now    func() time.Time
	newID  func() string
}

// Ensure the database implements the Store interface.
var _ Store = (*Database)(nil)

// NewDatabase initializes a new database connection.
func NewDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}

	if cfg.User != "" {
		client.SetBasicAuth(cfg.User, cfg.Pass)
	}

	db := &Database{
		cfg:    cfg,
		httpc:  httpc,
		client: client,
		now:    time.Now,
		newID:  newRowID,
	}

	err = db.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	return db, nil
}

// newRowID returns a fresh row id.
func newRowID() string {
	return uuid.New().String()
}

// Close releases idle database connections.
func (db *Database) Close() {
	db.httpc.CloseIdleConnections()
}

// execute runs the provided statements in a transaction.
func (db *Database) execute(ctx context.Context, stmts rqlitehttp.SQLStatements) error {
	resp, err := db.client.Execute(ctx, stmts, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("statement %d: %s", idx, errStr)
	}

	return nil
}

// query runs the provided statement, returning associative rows.
func (db *Database) query(ctx context.Context, sql string, params ...any) ([]map[string]any, error) {
	resp, err := db.client.Query(ctx, rqlitehttp.SQLStatements{
		{SQL: sql, PositionalParams: params},
	}, &rqlitehttp.QueryOptions{Associative: true, Timings: true})
	if err != nil {
		return nil, err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return nil, fmt.Errorf("query %d: %s", idx, errStr)
	}

	var rows []map[string]any
	for _, res := range resp.GetQueryResultsAssoc() {
		rows = append(rows, res.Rows...)
	}

	return rows, nil
}

// bootstrap initializes the database.
func (db *Database) bootstrap(ctx context.Context) error {
	return db.execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createWatchlistTableSQL},
		{SQL: createPositionTableSQL},
		{SQL: createAlertTableSQL},
		{SQL: createStopUpdateTableSQL},
	})
}

// asFloat converts a decoded column value to a float.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// asString converts a decoded column value to a string.
func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// FetchWatchlist fetches the tracked symbols.
func (db *Database) FetchWatchlist(ctx context.Context) ([]WatchlistEntry, error) {
	rows, err := db.query(ctx, findWatchlistSQL)
	if err != nil {
		return nil, fmt.Errorf("fetching watchlist: %w", err)
	}

	entries := make([]WatchlistEntry, 0, len(rows))
	for _, row := range rows {
		symbol, ok := asString(row["symbol"])
		if !ok || symbol == "" {
			db.cfg.Logger.Error().Msgf("unexpected watchlist row: %s", spew.Sdump(row))
			continue
		}

		scanType, _ := asString(row["scantype"])
		entries = append(entries, WatchlistEntry{
			Symbol:   strings.ToUpper(symbol),
			ScanType: shared.ParseScanType(scanType),
		})
	}

	return entries, nil
}

// parsePosition converts a position row, deriving days in trade from the provided time.
func parsePosition(row map[string]any, now time.Time) (risk.Position, bool) {
	var pos risk.Position
	var ok bool

	if pos.ID, ok = asString(row["id"]); !ok {
		return pos, false
	}
	if pos.Symbol, ok = asString(row["symbol"]); !ok {
		return pos, false
	}
	if pos.ActualEntry, ok = asFloat(row["entryprice"]); !ok {
		return pos, false
	}
	if pos.CurrentSL, ok = asFloat(row["stoploss"]); !ok {
		return pos, false
	}
	pos.CurrentTarget, _ = asFloat(row["target"])

	qty, ok := asFloat(row["qty"])
	if !ok {
		return pos, false
	}
	pos.Qty = int(qty)

	if openedOn, ok := asFloat(row["openedon"]); ok && openedOn > 0 {
		days := int(now.Sub(time.Unix(int64(openedOn), 0)).Hours() / 24)
		pos.DaysInTrade = max(days, 0)
	}

	return pos, true
}

// FetchOpenPositions fetches open positions, deriving days in trade from the provided time.
func (db *Database) FetchOpenPositions(ctx context.Context, now time.Time) ([]risk.Position, error) {
	rows, err := db.query(ctx, findOpenPositionsSQL, int(Open))
	if err != nil {
		return nil, fmt.Errorf("fetching open positions: %w", err)
	}

	positions := make([]risk.Position, 0, len(rows))
	for _, row := range rows {
		pos, ok := parsePosition(row, now)
		if !ok {
			db.cfg.Logger.Error().Msgf("unexpected position row: %s", spew.Sdump(row))
			continue
		}

		positions = append(positions, pos)
	}

	return positions, nil
}

// stopLossStatements builds the statements raising a position's stop loss and journaling the
// change.
func stopLossStatements(positionID string, oldSL float64, newSL float64, method string, now time.Time, newID func() string) rqlitehttp.SQLStatements {
	return rqlitehttp.SQLStatements{
		&rqlitehttp.SQLStatement{
			SQL:              updateStopLossSQL,
			PositionalParams: []any{newSL, positionID, newSL},
		},
		&rqlitehttp.SQLStatement{
			SQL:              persistStopUpdateSQL,
			PositionalParams: []any{newID(), positionID, oldSL, newSL, method, now.Unix()},
		},
	}
}

// UpdateStopLoss raises the stop loss of the provided position and journals the change. A stop
// is never lowered.
func (db *Database) UpdateStopLoss(ctx context.Context, positionID string, newSL float64, method string) error {
	rows, err := db.query(ctx, findPositionSQL, positionID)
	if err != nil {
		return fmt.Errorf("finding position %s: %w", positionID, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("no position found with id %s", positionID)
	}

	oldSL, ok := asFloat(rows[0]["stoploss"])
	if !ok {
		return fmt.Errorf("unexpected stop loss for position %s: %s", positionID, spew.Sdump(rows[0]))
	}
	if newSL <= oldSL {
		return fmt.Errorf("new stop loss %.2f does not raise %.2f for position %s", newSL, oldSL,
			positionID)
	}

	err = db.execute(ctx, stopLossStatements(positionID, oldSL, newSL, method, db.now(), db.newID))
	if err != nil {
		return fmt.Errorf("updating stop loss of position %s: %w", positionID, err)
	}

	return nil
}

// alertStatements builds the statements journaling the provided alerts.
func alertStatements(symbol string, positionID string, alerts []alert.Alert, now time.Time, newID func() string) rqlitehttp.SQLStatements {
	stmts := make(rqlitehttp.SQLStatements, 0, len(alerts))
	for _, a := range alerts {
		actionRequired := 0
		if a.ActionRequired {
			actionRequired = 1
		}

		stmts = append(stmts, &rqlitehttp.SQLStatement{
			SQL: persistAlertSQL,
			PositionalParams: []any{newID(), symbol, positionID, a.Type.String(),
				a.Severity.String(), a.Message, a.Suggestion, actionRequired, now.Unix()},
		})
	}

	return stmts
}

// PersistAlerts journals the provided alerts.
func (db *Database) PersistAlerts(ctx context.Context, symbol string, positionID string, alerts []alert.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	err := db.execute(ctx, alertStatements(symbol, positionID, alerts, db.now(), db.newID))
	if err != nil {
		return fmt.Errorf("persisting %d alerts for %s: %w", len(alerts), symbol, err)
	}

	return nil
}
