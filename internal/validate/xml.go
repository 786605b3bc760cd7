package validate

import (
	"bytes"
	"encoding/xml"

	"github.com/dm/appdx/internal/client"
)

// xmlDocument decodes an XML body into out after checking it is complete.
// A blank body means no data and leaves out untouched.
func xmlDocument(body []byte, rootField string, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := xml.Unmarshal(body, out); err != nil {
		// A document cut off mid-element decodes with an "unexpected EOF"
		// syntax error; everything else is a shape problem.
		if isXMLTruncation(err) {
			return &Error{Kind: Truncated, Field: rootField, Err: err}
		}
		return &Error{Kind: TypeMismatch, Field: rootField, Err: err}
	}
	return nil
}

func isXMLTruncation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return bytes.Contains([]byte(msg), []byte("unexpected EOF")) ||
		bytes.Contains([]byte(msg), []byte("unexpected end"))
}

// BusinessTransactions validates and decodes the business-transactions XML.
// Every transaction must carry an id and a name.
func BusinessTransactions(body []byte) ([]client.BusinessTransaction, error) {
	var doc client.BusinessTransactions
	if err := xmlDocument(body, "business-transactions", &doc); err != nil {
		return nil, err
	}
	for _, bt := range doc.Transactions {
		if bt.ID == 0 {
			return nil, &Error{Kind: MissingField, Field: "business-transaction.id"}
		}
		if bt.Name == "" {
			return nil, &Error{Kind: MissingField, Field: "business-transaction.name"}
		}
	}
	return doc.Transactions, nil
}

// Snapshots validates and decodes the request-snapshots XML. Every segment
// must carry a request GUID and a server start time, since the deep link and
// the time columns are built from them.
func Snapshots(body []byte) ([]client.Snapshot, error) {
	var doc client.SnapshotList
	if err := xmlDocument(body, "request-segment-datas", &doc); err != nil {
		return nil, err
	}
	for _, s := range doc.Snapshots {
		if s.RequestGUID == "" {
			return nil, &Error{Kind: MissingField, Field: "request-segment-data.requestGUID"}
		}
		if s.ServerStartTime == 0 {
			return nil, &Error{Kind: MissingField, Field: "request-segment-data.serverStartTime"}
		}
	}
	return doc.Snapshots, nil
}
