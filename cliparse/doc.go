// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags and environment variables.

# Usage

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

main loads an optional .env file (github.com/joho/godotenv) before parsing, so
values from it behave like ordinary environment variables.

# Precedence

CLI flags override environment variables:

 1. CLI flag (e.g., -p 8080)
 2. Environment variable (e.g., PORT=8080)
 3. Default value (if any)

# Configuration Options

	Flag          Env                 Default   Description
	-p            PORT                3318      Server port
	-d            DATABASE_URL        required  Store connection string
	-t            DATABASE_TYPE       postgres  postgres or sqlite
	-redis        REDIS_URL           -         Enables chat rate limiting
	-chat-rate    CHAT_RATE_LIMIT     5         Messages per user per window
	-chat-window  CHAT_RATE_WINDOW    10s       Rate limit window
	-max-message  MAX_MESSAGE_LENGTH  1000      Longest accepted chat message
	-max-limit    MAX_MESSAGE_LIMIT   500       Cap on ?limit= for chat history
	-bcrypt-cost  BCRYPT_COST         10        Password hash cost

# Errors

ParseFlags returns an error if:

  - DATABASE_URL is not provided
  - DATABASE_TYPE is not postgres or sqlite
  - A numeric or duration variable cannot be parsed
  - A chat limit is not positive
*/
package cliparse
