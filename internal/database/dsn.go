package database

import (
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Nombres de driver registrados en database/sql
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

const defaultMySQLPort = "3306"

// ParseConnectionString decide el driver y arma el DSN a partir del
// connectionString de los settings. Acepta:
//   - estilo ADO.NET: Server=h;Port=3306;Database=db;Uid=u;Pwd=p;
//   - DSN nativo de go-sql-driver: user:pass@tcp(host:3306)/db
//   - postgres:// o postgresql://
//   - sqlite://ruta o file:ruta
func ParseConnectionString(cs string) (driver, dsn string, err error) {
	cs = strings.TrimSpace(cs)
	lower := strings.ToLower(cs)

	switch {
	case cs == "":
		return "", "", fmt.Errorf("empty connection string")
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DriverPostgres, cs, nil
	case strings.HasPrefix(lower, "sqlite://"):
		return DriverSQLite, cs[len("sqlite://"):], nil
	case strings.HasPrefix(lower, "file:"):
		return DriverSQLite, cs, nil
	case isADOStyle(cs):
		dsn, err := mysqlDSNFromADO(cs)
		if err != nil {
			return "", "", err
		}
		return DriverMySQL, dsn, nil
	}

	if _, err := mysql.ParseDSN(cs); err != nil {
		return "", "", fmt.Errorf("unrecognized connection string: %w", err)
	}
	return DriverMySQL, cs, nil
}

// isADOStyle: el texto antes del primer '=' es una clave ADO.NET conocida
func isADOStyle(cs string) bool {
	key, _, ok := strings.Cut(cs, "=")
	if !ok {
		return false
	}
	_, known := adoKeys[normalizeKey(key)]
	return known
}

var adoKeys = map[string]struct{}{
	"server": {}, "host": {}, "data source": {}, "datasource": {}, "address": {}, "addr": {},
	"port": {}, "database": {}, "initial catalog": {},
	"uid": {}, "user id": {}, "userid": {}, "user": {}, "username": {},
	"pwd": {}, "password": {}, "charset": {}, "character set": {},
	"sslmode": {}, "ssl mode": {},
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.Join(strings.Fields(key), " "))
}

func mysqlDSNFromADO(cs string) (string, error) {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"

	host, port := "", defaultMySQLPort
	for _, part := range strings.Split(cs, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return "", fmt.Errorf("invalid connection string segment %q", part)
		}
		key = normalizeKey(key)
		value = strings.TrimSpace(value)

		switch key {
		case "server", "host", "data source", "datasource", "address", "addr":
			// "host,port" también es válido en ADO.NET
			if h, p, found := strings.Cut(value, ","); found {
				host, port = strings.TrimSpace(h), strings.TrimSpace(p)
			} else {
				host = value
			}
		case "port":
			port = value
		case "database", "initial catalog":
			cfg.DBName = value
		case "uid", "user id", "userid", "user", "username":
			cfg.User = value
		case "pwd", "password":
			cfg.Passwd = value
		case "charset", "character set":
			if cfg.Params == nil {
				cfg.Params = map[string]string{}
			}
			cfg.Params["charset"] = value
		case "sslmode", "ssl mode":
			cfg.TLSConfig = tlsFromSSLMode(value)
		}
	}

	if host == "" {
		return "", fmt.Errorf("connection string has no server")
	}
	cfg.Addr = net.JoinHostPort(host, port)

	return cfg.FormatDSN(), nil
}

func tlsFromSSLMode(mode string) string {
	switch strings.ToLower(strings.ReplaceAll(mode, " ", "")) {
	case "none", "disabled", "disable":
		return "false"
	case "required", "require":
		return "skip-verify"
	case "verifyca", "verifyfull":
		return "true"
	default:
		return "preferred"
	}
}
