package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// Custody accounts hold collateral tokens while a loan/agreement is
	// live. They must stay stable across restarts.
	LoanCustodyID      string
	AgreementCustodyID string

	// Administrative owner of the agreement ledger and the initial
	// delivery-confirmation oracle.
	OwnerID  string
	OracleID string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "agrifi"),
		MySQLUser: getenv("MYSQL_USER", "agrifi"),
		MySQLPass: getenv("MYSQL_PASS", "agrifi"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		IdempTTLSecs: 300,

		LoanCustodyID:      getenv("LOAN_CUSTODY_ID", "00000000000000000000000000000101"),
		AgreementCustodyID: getenv("AGREEMENT_CUSTODY_ID", "00000000000000000000000000000102"),
		OwnerID:            getenv("LEDGER_OWNER_ID", "00000000000000000000000000000a01"),
		OracleID:           getenv("ORACLE_ID", "00000000000000000000000000000a02"),
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	return c
}

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	for name, v := range map[string]string{
		"LOAN_CUSTODY_ID":      c.LoanCustodyID,
		"AGREEMENT_CUSTODY_ID": c.AgreementCustodyID,
		"LEDGER_OWNER_ID":      c.OwnerID,
		"ORACLE_ID":            c.OracleID,
	} {
		if !reHex32.MatchString(v) {
			return fmt.Errorf("%s must be 32-char lowercase hex, got %q", name, v)
		}
	}
	if c.LoanCustodyID == c.AgreementCustodyID {
		return errors.New("LOAN_CUSTODY_ID and AGREEMENT_CUSTODY_ID must differ")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
