package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type amountKind int

const (
	amountAbsent amountKind = iota
	amountNumber
	amountText
	amountOther
)

// Amount guarda um preço do jeito que a extração devolveu: número JSON, texto numérico ou ausente.
type Amount struct {
	kind amountKind
	num  float64
	text string
}

func Number(v float64) Amount { return Amount{kind: amountNumber, num: v} }

func Text(s string) Amount { return Amount{kind: amountText, text: s} }

// IsSet informa se o campo veio preenchido (qualquer tipo diferente de null).
func (a Amount) IsSet() bool { return a.kind != amountAbsent }

// IsNumber informa se o campo veio como número JSON.
func (a Amount) IsNumber() bool { return a.kind == amountNumber }

// Value retorna o número quando o campo é numérico.
func (a Amount) Value() (float64, bool) {
	if a.kind != amountNumber {
		return 0, false
	}
	return a.num, true
}

// Raw retorna o texto original (ou o número formatado).
func (a Amount) Raw() string {
	switch a.kind {
	case amountNumber:
		return strconv.FormatFloat(a.num, 'f', -1, 64)
	case amountText, amountOther:
		return a.text
	}
	return ""
}

// IsZero segue a regra de "valor falso": ausente, texto vazio, número zero ou false.
func (a Amount) IsZero() bool {
	switch a.kind {
	case amountAbsent:
		return true
	case amountNumber:
		return a.num == 0
	case amountText:
		return a.text == ""
	case amountOther:
		return a.text == "false"
	}
	return false
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = Amount{}
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Text(s)
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			// bool, objeto ou lista: guardamos para o validador rejeitar
			*a = Amount{kind: amountOther, text: string(b)}
			return nil
		}
		*a = Number(f)
	}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case amountNumber:
		return json.Marshal(a.num)
	case amountText:
		return json.Marshal(a.text)
	case amountOther:
		return []byte(a.text), nil
	}
	return []byte("null"), nil
}
