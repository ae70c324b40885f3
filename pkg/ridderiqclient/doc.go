// Package ridderiqclient is the entry point for calling the RidderIQ API from
// Go code. It wires the retrying HTTP transport, the executor and an optional
// logger around one set of credentials.
//
// Quick start
//
//	cli, err := ridderiqclient.New(&ridderiqclient.Config{
//	  Credentials: ridderiq.Credentials{
//	    BaseURL:          "https://api.ridderiq.com",
//	    TenantID:         "acme",
//	    AdministrationID: "main",
//	    APIKey:           os.Getenv("RIDDERIQ_API_KEY"),
//	  },
//	  Mode:          ridderiq.ContinueOnFailure,
//	  RatePerSecond: 5,
//	})
//	if err != nil { log.Fatal(err) }
//
//	if _, err := cli.Test(ctx); err != nil { log.Fatal(err) }
//
//	outcome, err := cli.Do(ctx, ridderiq.Record{Endpoint: "crm/todos"})
//
// NewFromEnv builds the same client from RIDDERIQ_BASE_URL, RIDDERIQ_TENANT_ID,
// RIDDERIQ_ADMINISTRATION_ID and RIDDERIQ_API_KEY.
package ridderiqclient
