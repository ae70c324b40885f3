// Package ridderiq turns structured request options into calls against the
// multi-tenant RidderIQ REST API and turns the answers into outcome records.
//
// # Overview
//
// A Record names an endpoint, a method, an API version and optional
// pagination, sort and filter options. For each record the Executor runs
// the same pipeline:
//
//  1. Record.Normalize checks the enumerated fields.
//  2. Compile turns filter clauses (simple mode) or a raw query (advanced
//     mode) into the filter parameter.
//  3. Assemble validates pagination and produces the QueryParams that are
//     actually sent.
//  4. Build joins base URL, tenant, administration, version and endpoint and
//     sets the API key header.
//  5. The injected Transport performs the call.
//
// Most consumers should use the ridderiqclient package, which wires the
// retrying HTTP transport and a logger:
//
//	cli, err := ridderiqclient.New(&ridderiqclient.Config{
//	  Credentials: ridderiq.Credentials{
//	    BaseURL:          "https://api.ridderiq.com",
//	    TenantID:         "acme",
//	    AdministrationID: "main",
//	    APIKey:           os.Getenv("RIDDERIQ_API_KEY"),
//	  },
//	})
//	if err != nil { log.Fatal(err) }
//
//	outcomes, err := cli.Execute(ctx, []ridderiq.Record{{
//	  Endpoint: "crm/todos",
//	  Options: ridderiq.Options{
//	    Filters: []ridderiq.FilterClause{{Field: "name", Operator: ridderiq.OperatorEq, Value: "Test"}},
//	  },
//	}})
//
// # Filters
//
// Simple clauses compile to field[operator]value fragments joined by " and ".
// Values are passed through Quote, which leaves numerals, booleans and
// function calls bare and wraps everything else in double quotes:
//
//	name[eq]"Test" and age[gt]20
//	age[between](1, 5)
//	id[in](1,2,3)
//
// Clauses with an empty field or value are skipped, as are between clauses
// without a second value.
//
// # Errors
//
// Bad input is reported as a *ValidationError, missing credentials or path
// segments as a *RequestBuildError. Both are detected before any network
// call. Failed calls are a *RemoteAPIError carrying the request and response
// for diagnostics; ToErrorRecord renders them with the API key masked.
//
// In FailFast mode (the default) the first failure ends the batch. With
// ContinueOnFailure every record yields an Outcome, failed ones carrying an
// ErrorRecord.
package ridderiq
