package models

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/stellar/go/support/errors"
)

// Recipient is one destination of a batched send
type Recipient struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

// Recipients is an ordered address → satoshi mapping. It marshals to a JSON
// object whose keys follow insertion order.
type Recipients []Recipient

// RecipientsFromMap converts m, sorting addresses so the result is stable
func RecipientsFromMap(m map[string]int64) Recipients {
	addresses := make([]string, 0, len(m))
	for addr := range m {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)

	out := make(Recipients, 0, len(addresses))
	for _, addr := range addresses {
		out = append(out, Recipient{Address: addr, Amount: m[addr]})
	}
	return out
}

// Add appends a recipient and returns the extended list
func (r Recipients) Add(address string, amount int64) Recipients {
	return append(r, Recipient{Address: address, Amount: amount})
}

// MarshalJSON implements json.Marshaler
func (r Recipients) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rcpt := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(rcpt.Address)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatInt(rcpt.Amount, 10))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts either the object form produced by MarshalJSON
// (order preserved) or a list of {"address", "amount"} entries.
func (r *Recipients) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []Recipient
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*r = list
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "read recipients")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("recipients must be an object or a list")
	}

	out := Recipients{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return errors.Wrap(err, "read recipient address")
		}
		addr, _ := tok.(string)

		var amount json.Number
		if err := dec.Decode(&amount); err != nil {
			return errors.Wrapf(err, "read amount for %s", addr)
		}
		sat, err := amount.Int64()
		if err != nil {
			return errors.Wrapf(err, "amount for %s is not an integer", addr)
		}
		out = append(out, Recipient{Address: addr, Amount: sat})
	}
	*r = out
	return nil
}
