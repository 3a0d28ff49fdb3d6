package mongostore

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cleared-dev/bote/internal/model"
)

// Documents may be written by other clients, so every field is read
// leniently: wrong types fall back to zero values instead of failing the
// whole listing.

func decodeTransaction(doc bson.M) model.Transaction {
	return model.Transaction{
		ID:            docID(doc["_id"]),
		TransactionID: str(doc["transaction_id"]),
		Type:          model.TransactionType(str(doc["type"])),
		Amount:        model.CoerceAmount(amountValue(doc["amount"])),
		MemberID:      model.CoerceMemberID(doc["member_id"]),
		Verified:      boolean(doc["verified"]),
		BankID:        str(doc["bank_id"]),
		Description:   str(doc["description"]),
		Timestamp:     timestamp(doc["timestamp"]),
		IsGuest:       boolean(doc["is_guest"]),
	}
}

func decodeMember(doc bson.M) model.Member {
	portion, err := model.ParseAlcoholPortion(str(doc["alcohol_portion"]))
	if err != nil {
		portion = model.PortionSingle
	}
	return model.Member{
		ID:               model.CoerceMemberID(doc["_id"]),
		Name:             str(doc["name"]),
		Alias:            str(doc["alias"]),
		Bizum:            str(doc["bizum"]),
		FavoriteProducts: stringList(doc["favorite_products"]),
		AlcoholPortion:   portion,
		PINHash:          str(doc["pin_hash"]),
	}
}

func docID(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case primitive.ObjectID:
		return x.Hex()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func boolean(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func amountValue(v any) any {
	if d, ok := v.(primitive.Decimal128); ok {
		return d.String()
	}
	return v
}

func timestamp(v any) time.Time {
	switch x := v.(type) {
	case primitive.DateTime:
		return x.Time().UTC()
	case time.Time:
		return x.UTC()
	case string:
		if t, err := time.Parse(time.RFC3339Nano, x); err == nil {
			return t
		}
	}
	return time.Time{}
}

func stringList(v any) []string {
	var items []any
	switch x := v.(type) {
	case primitive.A:
		items = x
	case []any:
		items = x
	case []string:
		return x
	default:
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
