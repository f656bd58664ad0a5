package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/taxirent/bookingservice/internal/domain"
	"github.com/taxirent/bookingservice/internal/log"
)

// Column order of a catalog file.
const (
	colID = iota
	colBrand
	colModel
	colDistrict
	colTaxiType
	colSeats
	colYear
	colCompany
	colMorningPrice
	colEveningPrice
	colDeposit
	columnCount
)

// LoadCSV reads a catalog file into store and returns the number of cars
// loaded. Malformed rows are logged and skipped.
func LoadCSV(ctx context.Context, path string, store *MemoryCarStore) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	return ReadCSV(ctx, file, store)
}

// ReadCSV is LoadCSV over an arbitrary reader. The first row is a header.
func ReadCSV(ctx context.Context, r io.Reader, store *MemoryCarStore) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// Skip header row
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read header: %w", err)
	}

	loaded := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return loaded, fmt.Errorf("failed to read CSV record: %w", err)
		}
		line++

		car, err := parseCar(record)
		if err != nil {
			log.Warn(ctx, "Skipping catalog row", zap.Int("line", line), zap.Error(err))
			continue
		}
		if err := store.Upsert(car); err != nil {
			log.Warn(ctx, "Skipping invalid car", zap.Int("line", line), zap.String("car_id", car.ID), zap.Error(err))
			continue
		}
		loaded++
	}

	return loaded, nil
}

func parseCar(record []string) (domain.Car, error) {
	if len(record) < columnCount {
		return domain.Car{}, fmt.Errorf("expected %d columns, got %d", columnCount, len(record))
	}

	seats, err := strconv.Atoi(strings.TrimSpace(record[colSeats]))
	if err != nil {
		return domain.Car{}, fmt.Errorf("invalid seats %q: %w", record[colSeats], err)
	}
	year, err := strconv.Atoi(strings.TrimSpace(record[colYear]))
	if err != nil {
		return domain.Car{}, fmt.Errorf("invalid year %q: %w", record[colYear], err)
	}
	morning, err := ParseAmount(record[colMorningPrice])
	if err != nil {
		return domain.Car{}, err
	}
	evening, err := ParseAmount(record[colEveningPrice])
	if err != nil {
		return domain.Car{}, err
	}
	deposit, err := ParseAmount(record[colDeposit])
	if err != nil {
		return domain.Car{}, err
	}

	return domain.Car{
		ID:                strings.TrimSpace(record[colID]),
		Brand:             strings.TrimSpace(record[colBrand]),
		Model:             strings.TrimSpace(record[colModel]),
		District:          strings.TrimSpace(record[colDistrict]),
		TaxiType:          domain.TaxiType(strings.ToLower(strings.TrimSpace(record[colTaxiType]))),
		Seats:             seats,
		Year:              year,
		CompanyName:       strings.TrimSpace(record[colCompany]),
		MorningPriceCents: morning,
		EveningPriceCents: evening,
		DepositCents:      deposit,
	}, nil
}

// ParseAmount converts a currency amount such as "300" or "8.2" to cents.
func ParseAmount(s string) (int64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return int64(math.Round(v * 100)), nil
}
