package board

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateArithmetic(t *testing.T) {
	t.Parallel()
	d := MustParseDate("2024-01-30")

	if got := d.AddDays(3).String(); got != "2024-02-02" {
		t.Errorf("AddDays(3) = %s, want 2024-02-02", got)
	}
	if got := d.AddDays(-30).String(); got != "2023-12-31" {
		t.Errorf("AddDays(-30) = %s, want 2023-12-31", got)
	}
	if got := d.DaysUntil(MustParseDate("2024-03-01")); got != 31 {
		t.Errorf("DaysUntil = %d, want 31", got)
	}
	if got := d.DaysUntil(MustParseDate("2024-01-28")); got != -2 {
		t.Errorf("DaysUntil backwards = %d, want -2", got)
	}
	if !(Date{}).AddDays(4).IsZero() {
		t.Error("AddDays on zero Date should stay zero")
	}
}

func TestMustParseDatePanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("MustParseDate(\"2024-13-01\") did not panic")
		}
	}()
	MustParseDate("2024-13-01")
}

func TestDateOfDropsClock(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC-5", -5*3600)
	ts := time.Date(2024, 3, 10, 23, 30, 0, 0, loc)
	if got := DateOf(ts).String(); got != "2024-03-10" {
		t.Errorf("DateOf = %s, want 2024-03-10", got)
	}
}

func TestMaxDate(t *testing.T) {
	t.Parallel()
	a := MustParseDate("2024-01-05")
	b := MustParseDate("2024-01-07")
	if !MaxDate(a, b).Equal(b) || !MaxDate(b, a).Equal(b) {
		t.Error("MaxDate did not return the later date")
	}
	if !MaxDate(Date{}, a).Equal(a) || !MaxDate(a, Date{}).Equal(a) {
		t.Error("MaxDate should ignore a zero operand")
	}
}

func TestDateJSON(t *testing.T) {
	t.Parallel()
	type wrap struct {
		D   Date  `json:"d"`
		Opt *Date `json:"opt,omitempty"`
	}
	in := wrap{D: MustParseDate("2024-02-29")}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"d":"2024-02-29"}` {
		t.Errorf("Marshal = %s", data)
	}

	var out wrap
	if err := json.Unmarshal([]byte(`{"d":"2024-02-29","opt":"2024-03-01"}`), &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !out.D.Equal(in.D) || out.Opt == nil || out.Opt.String() != "2024-03-01" {
		t.Errorf("Unmarshal = %+v", out)
	}

	if err := json.Unmarshal([]byte(`{"d":"29/02/2024"}`), &out); err == nil {
		t.Error("Unmarshal of malformed date succeeded")
	}
}
