package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Credentials holds the keys and per-currency account ids loaded from
// a Postman environment export.
type Credentials struct {
	PublicKey  string
	PrivateKey string
	AccountIDs map[string]string
}

type postmanEnv struct {
	Values []postmanValue `json:"values"`
}

type postmanValue struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
}

const accountIDPrefix = "account_id_cards_"

// LoadEnvironment parses a Postman environment JSON file. Disabled
// entries are skipped.
func LoadEnvironment(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment file: %w", err)
	}

	var env postmanEnv
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse environment file: %w", err)
	}

	creds := &Credentials{AccountIDs: make(map[string]string)}
	for _, v := range env.Values {
		if !v.Enabled {
			continue
		}
		switch {
		case v.Key == "public_key":
			creds.PublicKey = v.Value
		case v.Key == "private_key":
			creds.PrivateKey = v.Value
		case strings.HasPrefix(v.Key, accountIDPrefix):
			ccy := strings.ToUpper(strings.TrimPrefix(v.Key, accountIDPrefix))
			creds.AccountIDs[ccy] = v.Value
		}
	}

	if creds.PublicKey == "" {
		return nil, fmt.Errorf("environment file %s is missing public_key", path)
	}
	if creds.PrivateKey == "" {
		return nil, fmt.Errorf("environment file %s is missing private_key", path)
	}

	return creds, nil
}

// CardAccountID returns the card account id for a currency
func (c *Credentials) CardAccountID(currency string) (string, error) {
	id, ok := c.AccountIDs[strings.ToUpper(currency)]
	if !ok {
		return "", fmt.Errorf("no card account id for currency %s", currency)
	}
	return id, nil
}
