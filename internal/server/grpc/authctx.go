package grpcserver

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"google.golang.org/grpc/metadata"
)

// UserIDHeader is the metadata key carrying the caller's user id.
const UserIDHeader = "x-user-id"

type ctxKey string

const userIDKey ctxKey = "ft.userID"

// WithUserID stores the caller's user ID in context.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromCtx fetches user ID from context.
func UserIDFromCtx(ctx context.Context) (int64, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func userIDFromMD(ctx context.Context) (int64, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return 0, errors.New("no metadata")
	}
	for _, v := range md.Get(UserIDHeader) {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return 0, errors.New("bad user id")
		}
		return id, nil
	}
	return 0, errors.New("no user id")
}
