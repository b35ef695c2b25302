package entity

import "time"

// cloneAudit deep-copies the quartet so that a cloned row never
// aliases the original's pointers.
func cloneAudit(a Audit) Audit {
	return Audit{
		CreatedBy:  cloneString(a.CreatedBy),
		CreatedAt:  cloneTime(a.CreatedAt),
		ModifiedBy: cloneString(a.ModifiedBy),
		ModifiedAt: cloneTime(a.ModifiedAt),
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

// equalString compares optional strings by value.
func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalDate(a, b *Date) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// EqualTime compares optional timestamps by instant. Exported for the
// replication merger, which decides lineage on audit stamps.
func EqualTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
