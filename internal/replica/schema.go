package replica

import (
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"homebook/internal/apperr"
)

// requestSchema constrains the inbound replication document before
// any row is decoded. data maps table tags to row lists; rows are
// left open, the merger validates them per table.
const requestSchema = `
{
	token!: string & !=""
	table!: string & !=""
	mode?:  string
	data!:  {[string]: [...{...}]}
}
`

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaVal  cue.Value
)

func compiledSchema() (cue.Value, *cue.Context, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		schemaVal = schemaCtx.CompileString(requestSchema, cue.Filename("replication-request.cue"))
	})
	if err := schemaVal.Err(); err != nil {
		return cue.Value{}, nil, fmt.Errorf("compile request schema: %w", err)
	}
	return schemaVal, schemaCtx, nil
}

// ValidateRequest checks the raw request body against the schema.
func ValidateRequest(body []byte) error {
	schema, cctx, err := compiledSchema()
	if err != nil {
		return err
	}

	// JSON is a subset of CUE, so the body compiles directly.
	doc := cctx.CompileBytes(body, cue.Filename("request.json"))
	if err := doc.Err(); err != nil {
		return apperr.Service("parse replication request", err.Error())
	}
	if err := doc.Unify(schema).Validate(cue.Concrete(true)); err != nil {
		return apperr.Service("validate replication request", err.Error())
	}
	return nil
}
