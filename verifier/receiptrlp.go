package verifier

import (
	"github.com/corpus-core/c4go/encoding/rlp"
	"github.com/corpus-core/c4go/encoding/ssz"
)

// buildCanonicalReceiptRLP reconstructs a receipt's canonical RLP
// encoding from its decomposed fields, per spec.md §4.6: fields
// [statusOrStateRoot, cumulativeGasUsed, logsBloom, logs] wrapped in a
// list, with each log encoded as [address, [topics...], data], and a
// one-byte type prefix prepended for any typed (post-EIP-2718)
// transaction.
func buildCanonicalReceiptRLP(o ssz.Object) ([]byte, error) {
	txTypeObj, err := o.Get("txType")
	if err != nil {
		return nil, err
	}
	txType, err := txTypeObj.Uint()
	if err != nil {
		return nil, err
	}
	statusObj, err := o.Get("statusOrStateRoot")
	if err != nil {
		return nil, err
	}
	gasObj, err := o.Get("cumulativeGasUsed")
	if err != nil {
		return nil, err
	}
	gas, err := gasObj.Uint()
	if err != nil {
		return nil, err
	}
	bloomObj, err := o.Get("logsBloom")
	if err != nil {
		return nil, err
	}
	logsObj, err := o.Get("logs")
	if err != nil {
		return nil, err
	}
	n, err := logsObj.Len()
	if err != nil {
		return nil, err
	}

	logsBuilder := rlp.NewBuilder()
	for i := 0; i < n; i++ {
		logObj, err := logsObj.At(i)
		if err != nil {
			return nil, err
		}
		addrObj, err := logObj.Get("address")
		if err != nil {
			return nil, err
		}
		topicsObj, err := logObj.Get("topics")
		if err != nil {
			return nil, err
		}
		dataObj, err := logObj.Get("data")
		if err != nil {
			return nil, err
		}
		tn, err := topicsObj.Len()
		if err != nil {
			return nil, err
		}
		topicsBuilder := rlp.NewBuilder()
		for j := 0; j < tn; j++ {
			t, err := topicsObj.At(j)
			if err != nil {
				return nil, err
			}
			topicsBuilder.AddItem(t.Bytes)
		}
		logBuilder := rlp.NewBuilder()
		logBuilder.AddItem(addrObj.Bytes)
		logBuilder.AddList(topicsBuilder)
		logBuilder.AddItem(dataObj.Bytes)
		logsBuilder.AddList(logBuilder)
	}

	receiptBuilder := rlp.NewBuilder()
	if len(statusObj.Bytes) == 32 {
		receiptBuilder.AddItem(statusObj.Bytes)
	} else {
		// Post-Byzantium receipts carry a status code here, which RLP
		// encodes as an integer (so status 0 is the empty string
		// 0x80, not the literal byte 0x00 AddItem would produce).
		receiptBuilder.AddUint(uint64(statusObj.Bytes[0]))
	}
	receiptBuilder.AddUint(gas)
	receiptBuilder.AddItem(bloomObj.Bytes)
	receiptBuilder.AddList(logsBuilder)
	encoded := receiptBuilder.ToList()
	if txType > 0 {
		encoded = append([]byte{byte(txType)}, encoded...)
	}
	return encoded, nil
}
