package store

// schemaSQL contains the database schema initialization SQL. The single %d
// placeholder is the HNSW embedding dimension.
//
// All retrieved content lives in one `document` table logically partitioned by
// the `collection` field. A collection exists as soon as one document carries
// its name; deleting a collection is a filtered DELETE. Metadata fields are
// flattened into columns so filter predicates can use native operators.
const schemaSQL = `
    -- ==========================================================================
    -- DOCUMENT TABLE (vector store, partitioned by collection)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS document SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS collection ON document TYPE string;
    DEFINE FIELD IF NOT EXISTS content ON document TYPE string;
    DEFINE FIELD IF NOT EXISTS embedding ON document TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS source ON document TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS url ON document TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS title ON document TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS section ON document TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS content_type ON document TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS tags ON document TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS chunk_index ON document TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS ingested ON document TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS document_collection ON document FIELDS collection;
    DEFINE INDEX IF NOT EXISTS document_tags ON document FIELDS tags;
    DEFINE INDEX IF NOT EXISTS document_embedding ON document FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;

    -- ==========================================================================
    -- THREAD TABLE (conversation state)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS thread SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS thread_id ON thread TYPE string;
    DEFINE FIELD IF NOT EXISTS is_first_run ON thread TYPE bool DEFAULT true;
    DEFINE FIELD IF NOT EXISTS has_search_data ON thread TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS created ON thread TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated ON thread TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS thread_thread_id ON thread FIELDS thread_id UNIQUE;

    -- ==========================================================================
    -- MESSAGE TABLE (append-only, ordered by seq)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS message SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS thread_id ON message TYPE string;
    DEFINE FIELD IF NOT EXISTS seq ON message TYPE int;
    DEFINE FIELD IF NOT EXISTS role ON message TYPE string;
    DEFINE FIELD IF NOT EXISTS content ON message TYPE string;
    DEFINE FIELD IF NOT EXISTS created ON message TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS message_thread_id ON message FIELDS thread_id;
`
