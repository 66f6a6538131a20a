// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

/*
Command cinesync keeps the movie catalog search indices in step with the
catalog database.

Usage:

	cinesync [run]                     sync loop plus ops server until SIGINT/SIGTERM
	cinesync once                      one round of Filmwork, Genre and Person, then exit
	cinesync indices create            create missing indices and exit
	cinesync state show                print stored watermarks
	cinesync state reset <type|all>    drop watermarks; the next cycle runs in bulk mode

Configuration comes from defaults, an optional YAML file (--config or
CONFIG_PATH) and environment variables such as DB_HOST, ES_ADDRESSES,
ETL_STATE_FILE_PATH and APP_SLEEP_TIMEOUT. ENVIRONMENT=dev switches logging
to debug level with console output.

"once" exits with status 1 when any document type failed. Stop the sync loop
before running "state reset", otherwise a running cycle may commit over it.
*/
package main
