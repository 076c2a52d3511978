package services

import (
	"encoding/binary"

	domainerrors "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/errors"
	"github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/entities"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
)

// ImportRecordSize is the fixed width of one member record on the wire:
// 20-byte address + u16 join year + u8 join month + u8 part-time factor +
// u16 break months + u8 active flag, big-endian, no separators.
const ImportRecordSize = 27

// DecodeMemberRecords splits a concatenated import payload into member
// records. The whole batch fails when the payload length is not an exact
// multiple of the record size.
func DecodeMemberRecords(payload []byte) ([]entities.MemberRecord, error) {
	if len(payload) == 0 || len(payload)%ImportRecordSize != 0 {
		return nil, domainerrors.ErrMalformedImportBatch
	}

	records := make([]entities.MemberRecord, 0, len(payload)/ImportRecordSize)
	for offset := 0; offset < len(payload); offset += ImportRecordSize {
		chunk := payload[offset : offset+ImportRecordSize]
		address, err := identity.AddressFromBytes(chunk[:20])
		if err != nil {
			return nil, domainerrors.ErrMalformedImportBatch
		}
		records = append(records, entities.MemberRecord{
			Address:        address,
			JoinYear:       binary.BigEndian.Uint16(chunk[20:22]),
			JoinMonth:      chunk[22],
			PartTimeFactor: chunk[23],
			MonthsOnBreak:  binary.BigEndian.Uint16(chunk[24:26]),
			Active:         chunk[26] != 0,
		})
	}
	return records, nil
}

// EncodeMemberRecords is the inverse of DecodeMemberRecords; the import
// tooling uses it to build payloads from registry snapshots.
func EncodeMemberRecords(records []entities.MemberRecord) []byte {
	payload := make([]byte, 0, len(records)*ImportRecordSize)
	for _, record := range records {
		chunk := make([]byte, ImportRecordSize)
		copy(chunk[:20], record.Address[:])
		binary.BigEndian.PutUint16(chunk[20:22], record.JoinYear)
		chunk[22] = record.JoinMonth
		chunk[23] = record.PartTimeFactor
		binary.BigEndian.PutUint16(chunk[24:26], record.MonthsOnBreak)
		if record.Active {
			chunk[26] = 1
		}
		payload = append(payload, chunk...)
	}
	return payload
}
