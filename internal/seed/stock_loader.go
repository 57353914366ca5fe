package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"medstock/m/domain"
)

// Stocker is the part of the store the loader needs.
type Stocker interface {
	SeedStock(ctx context.Context, in domain.StockInput) (bool, error)
}

// LoadStock reads initial stock from a CSV file with the header
// name,batch,expiry,brand,supplier,quantity. Each row goes through
// SeedStock, so a seeded pair shows up as ADD history once and a pair that
// is already stocked is left alone. Loading the same file again is a no-op.
func LoadStock(ctx context.Context, st Stocker, csvPath string) (int, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("opening stock file %s: %w", csvPath, err)
	}
	defer file.Close()

	return ReadStock(ctx, st, file)
}

// ReadStock is LoadStock over an arbitrary reader. Malformed rows are logged
// and skipped; the number of pairs created is returned.
func ReadStock(ctx context.Context, st Stocker, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// Skip header
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading stock header: %w", err)
	}

	rows := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logrus.WithError(err).WithField("line", line).Warn("unable to read stock row")
			continue
		}
		if len(record) < 6 {
			logrus.WithField("line", line).Warn("skipping short stock row")
			continue
		}

		quantity, err := strconv.ParseInt(strings.TrimSpace(record[5]), 10, 64)
		if err != nil {
			logrus.WithField("line", line).Warnf("skipping stock row with quantity %q", record[5])
			continue
		}
		in := domain.StockInput{
			Name:     record[0],
			Batch:    record[1],
			Expiry:   record[2],
			Brand:    record[3],
			Supplier: record[4],
			Quantity: quantity,
		}

		created, err := st.SeedStock(ctx, in)
		if err != nil {
			var invalid *domain.ValidationError
			if errors.As(err, &invalid) {
				logrus.WithField("line", line).Warnf("skipping stock row: %s", invalid.Message)
				continue
			}
			return rows, fmt.Errorf("stocking %s/%s: %w", in.Name, in.Batch, err)
		}
		if !created {
			logrus.WithField("line", line).Debugf("%s/%s already stocked", in.Name, in.Batch)
			continue
		}
		rows++
	}

	logrus.WithField("rows", rows).Info("seeded initial stock")
	return rows, nil
}
