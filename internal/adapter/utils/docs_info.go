// @title           Community Knowledge Assistant API
// @version         1.0
// @description     Resident chat grounded in each community's governing documents and the state statutes,
// @description     plus the admin surface for communities and document ingestion.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email   ank.github@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package utils

//run redis
//docker run -p 6379:6379 -d redis

//run qdrant
//docker run -p 6333:6333 -p 6334:6334 -v vectorDBData:/qdrant/storage qdrant/qdrant

//run postgres with pgvector (VECTOR_STORE=postgres or REGISTRY_STORE=postgres)
//docker run -p 5432:5432 -e POSTGRES_PASSWORD=postgres -e POSTGRES_DB=community -d pgvector/pgvector:pg16

//swagger init
//swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
