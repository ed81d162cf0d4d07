package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// MovementKind classifies a cash movement. The kind decides how the amount
// affects the session balance: opening, inflow and sale are credits; outflow,
// closing and shortage are debits. Amounts are always stored non-negative.
type MovementKind int

const (
	MovementOpening  MovementKind = 0
	MovementClosing  MovementKind = 1
	MovementInflow   MovementKind = 2
	MovementOutflow  MovementKind = 3
	MovementSale     MovementKind = 4
	MovementShortage MovementKind = 5
)

var movementKindNames = [...]string{"opening", "closing", "inflow", "outflow", "sale", "shortage"}

func (k MovementKind) String() string {
	if k < 0 || int(k) >= len(movementKindNames) {
		return "unknown"
	}
	return movementKindNames[k]
}

// IsCredit reports whether the kind adds to the balance.
func (k MovementKind) IsCredit() bool {
	switch k {
	case MovementOpening, MovementInflow, MovementSale:
		return true
	}
	return false
}

// Sign returns +1 for credit kinds and -1 for debit kinds.
func (k MovementKind) Sign() int64 {
	if k.IsCredit() {
		return 1
	}
	return -1
}

func (k MovementKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *MovementKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*k = MovementKind(i)
		return nil
	}
	switch str {
	case "opening":
		*k = MovementOpening
	case "closing":
		*k = MovementClosing
	case "inflow":
		*k = MovementInflow
	case "outflow":
		*k = MovementOutflow
	case "sale":
		*k = MovementSale
	case "shortage":
		*k = MovementShortage
	default:
		return fmt.Errorf("unknown movement kind %q", str)
	}
	return nil
}

func (k MovementKind) Value() (driver.Value, error) {
	return int64(k), nil
}

func (k *MovementKind) Scan(value interface{}) error {
	if value == nil {
		*k = MovementOpening
		return nil
	}
	var v MovementKind
	switch raw := value.(type) {
	case int64:
		v = MovementKind(raw)
	case int:
		v = MovementKind(raw)
	default:
		return fmt.Errorf("cannot scan %T into MovementKind", value)
	}
	if v < 0 || int(v) >= len(movementKindNames) {
		return fmt.Errorf("movement kind %d out of range", v)
	}
	*k = v
	return nil
}
