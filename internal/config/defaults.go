package config

// DefaultConfig returns the built-in configuration: the public test
// hub, the simulator's delayed-card fixture, and the poll bounds the
// hub's processing delays were tuned for.
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		API: APIConfig{
			BaseURL: "https://api.test.paysafe.com/paymenthub/v1",
		},
		Poll: PollConfig{
			IntervalSeconds:       2,
			MaxAttempts:           10,
			RefundIntervalSeconds: 2,
			RefundMaxAttempts:     10,
			ReconcileWaitSeconds:  5,
		},
		Card: CardConfig{
			Number:      "4000000000002503",
			ExpiryMonth: "02",
			ExpiryYear:  "2026",
			CVV:         "111",
			HolderName:  "John Doe",
		},
		Customer: CustomerConfig{
			FirstName: "John",
			LastName:  "Doe",
			Email:     "john.doe@paysafe.com",
			IP:        "172.0.0.1",
			Street:    "5335 Gate Pkwy",
			City:      "Jacksonville",
			Zip:       "32256",
			Country:   "US",
			State:     "FL",
		},
	}
}
