package catalog

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/betafolio/backend/internal/contracts"
)

// defaultUniverse 기본 20종목 (시가총액 내림차순)
var defaultUniverse = []contracts.Instrument{
	{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", Beta: 1.2, MarketCap: 3_000_000_000_000},
	{Symbol: "MSFT", Name: "Microsoft Corp.", Sector: "Technology", Beta: 1.1, MarketCap: 2_800_000_000_000},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Sector: "Technology", Beta: 1.3, MarketCap: 1_800_000_000_000},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Sector: "Consumer Discretionary", Beta: 1.4, MarketCap: 1_500_000_000_000},
	{Symbol: "NVDA", Name: "NVIDIA Corp.", Sector: "Technology", Beta: 1.8, MarketCap: 1_200_000_000_000},
	{Symbol: "META", Name: "Meta Platforms Inc.", Sector: "Technology", Beta: 1.5, MarketCap: 900_000_000_000},
	{Symbol: "TSLA", Name: "Tesla Inc.", Sector: "Consumer Discretionary", Beta: 2.1, MarketCap: 800_000_000_000},
	{Symbol: "UNH", Name: "UnitedHealth Group", Sector: "Healthcare", Beta: 0.8, MarketCap: 520_000_000_000},
	{Symbol: "V", Name: "Visa Inc.", Sector: "Financial Services", Beta: 1.1, MarketCap: 500_000_000_000},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Sector: "Financial Services", Beta: 1.0, MarketCap: 450_000_000_000},
	{Symbol: "JNJ", Name: "Johnson & Johnson", Sector: "Healthcare", Beta: 0.7, MarketCap: 420_000_000_000},
	{Symbol: "MA", Name: "Mastercard Inc.", Sector: "Financial Services", Beta: 1.2, MarketCap: 400_000_000_000},
	{Symbol: "PG", Name: "Procter & Gamble", Sector: "Consumer Staples", Beta: 0.5, MarketCap: 380_000_000_000},
	{Symbol: "HD", Name: "Home Depot Inc.", Sector: "Consumer Discretionary", Beta: 1.0, MarketCap: 350_000_000_000},
	{Symbol: "ADBE", Name: "Adobe Inc.", Sector: "Technology", Beta: 1.4, MarketCap: 250_000_000_000},
	{Symbol: "DIS", Name: "Walt Disney Co.", Sector: "Communication Services", Beta: 1.3, MarketCap: 200_000_000_000},
	{Symbol: "CRM", Name: "Salesforce Inc.", Sector: "Technology", Beta: 1.3, MarketCap: 200_000_000_000},
	{Symbol: "NFLX", Name: "Netflix Inc.", Sector: "Communication Services", Beta: 1.7, MarketCap: 180_000_000_000},
	{Symbol: "INTC", Name: "Intel Corp.", Sector: "Technology", Beta: 1.1, MarketCap: 150_000_000_000},
	{Symbol: "PYPL", Name: "PayPal Holdings Inc.", Sector: "Financial Services", Beta: 1.6, MarketCap: 100_000_000_000},
}

// Default returns the compiled-in universe
func Default() *Catalog {
	return MustNew(defaultUniverse)
}

// universeFile is the YAML layout of CATALOG_FILE
type universeFile struct {
	Instruments []contracts.Instrument `yaml:"instruments"`
}

// LoadFile reads a YAML universe; file order becomes catalog order
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var f universeFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}

	return New(f.Instruments)
}

// Load returns Default() when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
