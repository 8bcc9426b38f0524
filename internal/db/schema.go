package db

// SchemaSQL contains the database schema initialization SQL. Transcript,
// decision and metadata are nested documents; FLEXIBLE keeps them queryable
// without mirroring every field into the schema.
const SchemaSQL = `
    DEFINE TABLE IF NOT EXISTS session SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS question ON session TYPE string;
    DEFINE FIELD IF NOT EXISTS council ON session FLEXIBLE TYPE object;
    DEFINE FIELD IF NOT EXISTS transcript ON session FLEXIBLE TYPE array<object>;
    DEFINE FIELD IF NOT EXISTS decision ON session FLEXIBLE TYPE option<object>;
    DEFINE FIELD IF NOT EXISTS started_at ON session TYPE datetime;
    DEFINE FIELD IF NOT EXISTS completed_at ON session TYPE datetime;
    DEFINE FIELD IF NOT EXISTS metadata ON session FLEXIBLE TYPE object;
    DEFINE FIELD IF NOT EXISTS created ON session TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS session_started ON session FIELDS started_at;
`
