package etl

// Version is stamped into metadata.json and the QC report so a run directory
// records which ETL build produced it.
const Version = "v1.0.0"
