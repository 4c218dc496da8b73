// Package config loads the tool's own YAML configuration and the
// Postman environment file carrying hub credentials.
package config

// Config is the full tool configuration
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	// API endpoint settings
	API APIConfig `yaml:"api" mapstructure:"api"`

	// Poll loop bounds
	Poll PollConfig `yaml:"poll" mapstructure:"poll"`

	// Test card and customer fixture
	Card     CardConfig     `yaml:"card" mapstructure:"card"`
	Customer CustomerConfig `yaml:"customer" mapstructure:"customer"`
}

// APIConfig configures the hub endpoint
type APIConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PollConfig bounds the completion and refund poll loops
type PollConfig struct {
	IntervalSeconds       int `yaml:"interval_seconds" mapstructure:"interval_seconds"`
	MaxAttempts           int `yaml:"max_attempts" mapstructure:"max_attempts"`
	RefundIntervalSeconds int `yaml:"refund_interval_seconds" mapstructure:"refund_interval_seconds"`
	RefundMaxAttempts     int `yaml:"refund_max_attempts" mapstructure:"refund_max_attempts"`
	ReconcileWaitSeconds  int `yaml:"reconcile_wait_seconds" mapstructure:"reconcile_wait_seconds"`
}

// CardConfig is the simulator test card
type CardConfig struct {
	Number      string `yaml:"number" mapstructure:"number"`
	ExpiryMonth string `yaml:"expiry_month" mapstructure:"expiry_month"`
	ExpiryYear  string `yaml:"expiry_year" mapstructure:"expiry_year"`
	CVV         string `yaml:"cvv" mapstructure:"cvv"`
	HolderName  string `yaml:"holder_name" mapstructure:"holder_name"`
}

// CustomerConfig is the profile and billing address attached to handles
type CustomerConfig struct {
	FirstName string `yaml:"first_name" mapstructure:"first_name"`
	LastName  string `yaml:"last_name" mapstructure:"last_name"`
	Email     string `yaml:"email" mapstructure:"email"`
	IP        string `yaml:"ip" mapstructure:"ip"`

	Street  string `yaml:"street" mapstructure:"street"`
	City    string `yaml:"city" mapstructure:"city"`
	Zip     string `yaml:"zip" mapstructure:"zip"`
	Country string `yaml:"country" mapstructure:"country"`
	State   string `yaml:"state" mapstructure:"state"`
}
