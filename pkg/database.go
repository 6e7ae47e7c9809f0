package reco

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
	_ "modernc.org/sqlite"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// ConnectToDatabase opens the geometry database: the MySQL server given by
// host and dbname, or a SQLite file for local runs.
func ConnectToDatabase(config Configuration) (*sqlx.DB, error) {
	switch config.DBDriver {
	case DriverMySQL, "":
		port := "3306"
		dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", config.User, config.Passwd, config.Host, port, config.DBName)
		return sqlx.Connect(DriverMySQL, dbURI)
	case DriverSQLite:
		return sqlx.Connect(DriverSQLite, config.DBFile)
	}
	return nil, fmt.Errorf("unknown database driver %q", config.DBDriver)
}

// LoadGeometry reads the sensors valid for runNumber.
func LoadGeometry(db *sqlx.DB, runNumber int, verbosity int) (*Geometry, error) {
	query := "SELECT SensorID, X, Y, Z, QE, NoiseRate, Operational, TableIdx FROM SensorGeometry " +
		"WHERE MinRun <= ? and MaxRun >= ? ORDER BY SensorID"

	if verbosity > 0 {
		logger.Info("Reading sensor geometry from database", "database")
	}
	if verbosity > 2 {
		message := fmt.Sprintf("Query: %s (run %d)", query, runNumber)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(db.Rebind(query), runNumber, runNumber)
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	sensors := make([]SensorGeometry, 0)
	for rows.Next() {
		result := SensorGeometry{}
		if err := rows.StructScan(&result); err != nil {
			return nil, fmt.Errorf("error scanning DB row: %w", err)
		}
		sensors = append(sensors, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading DB rows: %w", err)
	}
	if len(sensors) == 0 {
		return nil, fmt.Errorf("no sensor geometry for run %d", runNumber)
	}

	if verbosity > 0 {
		message := fmt.Sprintf("%d sensors read from DB", len(sensors))
		logger.Info(message, "database")
	}
	return NewGeometry(sensors), nil
}
