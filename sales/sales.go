// Package sales keeps the append-only journal of committed purchases.
// Records are produced only by a machine commit and never mutated.
package sales

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"

	"github.com/vendcore/vendcore/currency"
)

type Record struct {
	ID      uuid.UUID
	At      time.Time
	Product string
	Price   currency.Amount
}

func NewRecord(product string, price currency.Amount) Record {
	return Record{
		ID:      uuid.New(),
		At:      time.Now(),
		Product: product,
		Price:   price,
	}
}

func (r Record) String() string {
	return fmt.Sprintf("%s - %s sold for $%s", r.At.Format("2006-01-02 15:04:05"), r.Product, r.Price.Format100I())
}

type Journal struct {
	mu      sync.Mutex
	records []Record
}

func (j *Journal) Append(r Record) {
	j.mu.Lock()
	j.records = append(j.records, r)
	j.mu.Unlock()
}

func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.records)
}

// Iter visits a snapshot of the journal in append order.
func (j *Journal) Iter(f func(r Record) error) error {
	j.mu.Lock()
	snapshot := make([]Record, len(j.records))
	copy(snapshot, j.records)
	j.mu.Unlock()
	for _, r := range snapshot {
		if err := f(r); err != nil {
			return err
		}
	}
	return nil
}

// Total is the value of all recorded sales.
func (j *Journal) Total() currency.Amount {
	j.mu.Lock()
	defer j.mu.Unlock()
	sum := currency.Amount(0)
	for _, r := range j.records {
		sum += r.Price
	}
	return sum
}

// One journal record per line: unixnano TAB id TAB price TAB product.
// Product goes last so tabs are the only forbidden character in names.
func (j *Journal) MarshalBinary() ([]byte, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var b bytes.Buffer
	for _, r := range j.records {
		fmt.Fprintf(&b, "%d\t%s\t%d\t%s\n", r.At.UnixNano(), r.ID.String(), int32(r.Price), r.Product)
	}
	return b.Bytes(), nil
}

func (j *Journal) UnmarshalBinary(data []byte) error {
	records := make([]Record, 0, 16)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 4)
		if len(parts) != 4 {
			return errors.Errorf("journal line=%q is malformed", line)
		}
		nanos, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return errors.Annotatef(err, "journal line=%q time", line)
		}
		id, err := uuid.Parse(parts[1])
		if err != nil {
			return errors.Annotatef(err, "journal line=%q id", line)
		}
		price, err := strconv.ParseInt(parts[2], 10, 32)
		if err != nil {
			return errors.Annotatef(err, "journal line=%q price", line)
		}
		records = append(records, Record{
			ID:      id,
			At:      time.Unix(0, nanos),
			Price:   currency.Amount(price),
			Product: parts[3],
		})
	}
	if err := sc.Err(); err != nil {
		return errors.Trace(err)
	}
	j.mu.Lock()
	j.records = records
	j.mu.Unlock()
	return nil
}
