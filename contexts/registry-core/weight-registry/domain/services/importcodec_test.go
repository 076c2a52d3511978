package services

import (
	"bytes"
	"testing"

	domainerrors "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/errors"
	"github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/entities"
)

func TestImportCodecRoundTrip(t *testing.T) {
	records := []entities.MemberRecord{
		{Address: testAddress(t, 1), JoinYear: 2022, JoinMonth: 3, PartTimeFactor: 100, MonthsOnBreak: 6, Active: true},
		{Address: testAddress(t, 2), JoinYear: 1998, JoinMonth: 12, PartTimeFactor: 50, MonthsOnBreak: 0, Active: false},
	}
	payload := EncodeMemberRecords(records)
	if len(payload) != 2*ImportRecordSize {
		t.Fatalf("expected %d bytes, got %d", 2*ImportRecordSize, len(payload))
	}

	decoded, err := DecodeMemberRecords(payload)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(decoded))
	}
	for i := range records {
		if decoded[i] != records[i] {
			t.Fatalf("record %d mismatch: %+v != %+v", i, decoded[i], records[i])
		}
	}
}

func TestImportCodecFieldLayout(t *testing.T) {
	record := entities.MemberRecord{
		Address:        testAddress(t, 7),
		JoinYear:       2022,
		JoinMonth:      3,
		PartTimeFactor: 100,
		MonthsOnBreak:  6,
		Active:         true,
	}
	payload := EncodeMemberRecords([]entities.MemberRecord{record})
	if !bytes.Equal(payload[:20], record.Address[:]) {
		t.Fatalf("address bytes must lead the record")
	}
	// 2022 = 0x07e6 big-endian
	if payload[20] != 0x07 || payload[21] != 0xe6 {
		t.Fatalf("join year must be big-endian u16, got %x %x", payload[20], payload[21])
	}
	if payload[22] != 3 || payload[23] != 100 {
		t.Fatalf("month/factor bytes wrong: %d %d", payload[22], payload[23])
	}
	if payload[24] != 0 || payload[25] != 6 {
		t.Fatalf("break months must be big-endian u16, got %x %x", payload[24], payload[25])
	}
	if payload[26] != 1 {
		t.Fatalf("active flag byte wrong: %d", payload[26])
	}
}

func TestDecodeRejectsMisalignedBatch(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		make([]byte, ImportRecordSize-1),
		make([]byte, ImportRecordSize+1),
		make([]byte, 2*ImportRecordSize+5),
	}
	for _, payload := range cases {
		if _, err := DecodeMemberRecords(payload); err != domainerrors.ErrMalformedImportBatch {
			t.Fatalf("expected malformed batch error for %d bytes, got %v", len(payload), err)
		}
	}
}
