package sqlite

// readingsSchema creates the readings table. The IF NOT EXISTS guard only
// looks at the table name; shape checks are done by checkReadings.
const readingsSchema = `
CREATE TABLE IF NOT EXISTS readings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    temperature REAL,
    humidity REAL,
    timestamp TEXT
);
`
