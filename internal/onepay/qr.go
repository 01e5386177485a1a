package onepay

import (
	"fmt"
	"strconv"
	"strings"
)

// QRData describes one payment request encoded into a QR.
type QRData struct {
	TransactionID string
	InvoiceID     string
	TerminalID    string
	Description   string
	Amount        int64
}

const (
	currencyLAK = "418"
	countryLA   = "LA"
)

// Code builds the EMV merchant-presented payload for data, ending in a
// CRC-16/CCITT checksum field.
func (c *Client) Code(data QRData) string {
	return buildCode(c.mcid, data)
}

func buildCode(mcid string, data QRData) string {
	var b strings.Builder
	b.WriteString(tlv("00", "01"))
	b.WriteString(tlv("01", "12"))
	b.WriteString(tlv("33", tlv("00", "BCEL")+tlv("01", "ONEPAY")+tlv("02", mcid)))
	b.WriteString(tlv("53", currencyLAK))
	if data.Amount > 0 {
		b.WriteString(tlv("54", strconv.FormatInt(data.Amount, 10)))
	}
	b.WriteString(tlv("58", countryLA))

	var extra strings.Builder
	extra.WriteString(tlv("01", data.InvoiceID))
	extra.WriteString(tlv("05", data.TransactionID))
	extra.WriteString(tlv("07", data.TerminalID))
	extra.WriteString(tlv("08", data.Description))
	b.WriteString(tlv("62", extra.String()))

	b.WriteString("6304")
	return b.String() + fmt.Sprintf("%04X", crc16CCITT([]byte(b.String())))
}

// tlv encodes one field. Values longer than 99 bytes are cut.
func tlv(id, value string) string {
	if value == "" {
		return ""
	}
	if len(value) > 99 {
		value = value[:99]
	}
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

func crc16CCITT(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
