package postgres

import sq "github.com/Masterminds/squirrel"

// Builder returns a squirrel statement builder using $N placeholders.
func Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// Page clamps limit/offset for list queries.
func Page(limit, offset, defaultLimit, maxLimit int) (uint64, uint64) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return uint64(limit), uint64(offset)
}
