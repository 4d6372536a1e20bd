package repository

var schemaStatements = []string{
	`CREATE CONSTRAINT bnpl_record_source IF NOT EXISTS
FOR (r:BnplRecord) REQUIRE (r.userEmail, r.sourceMessageId) IS UNIQUE`,
	`CREATE CONSTRAINT bnpl_record_id IF NOT EXISTS
FOR (r:BnplRecord) REQUIRE r.recordId IS UNIQUE`,
	`CREATE CONSTRAINT user_email IF NOT EXISTS
FOR (u:User) REQUIRE u.email IS UNIQUE`,
}

const recordProjection = `
RETURN r.recordId AS recordId,
       r.userEmail AS userEmail,
       r.sourceMessageId AS sourceMessageId,
       r.vendor AS vendor,
       r.amount AS amount,
       r.installments AS installments,
       r.dueDate AS dueDate,
       r.subject AS subject,
       r.status AS status,
       r.createdAt AS createdAt
`

const findRecordCypher = `
MATCH (r:BnplRecord {userEmail: $userEmail, sourceMessageId: $sourceMessageId})
` + recordProjection

const getRecordCypher = `
MATCH (r:BnplRecord {recordId: $recordId, userEmail: $userEmail})
` + recordProjection

const listRecordsCypher = `
MATCH (r:BnplRecord {userEmail: $userEmail})
WHERE $status = "" OR r.status = $status
` + recordProjection + `ORDER BY r.createdAt DESC, r.recordId DESC
`

const insertRecordCypher = `
MERGE (u:User {email: $userEmail})
WITH u
OPTIONAL MATCH (u)-[:OWES]->(existing:BnplRecord {sourceMessageId: $sourceMessageId})
WITH u, existing
WHERE existing IS NULL
MERGE (c:Counter {name: "bnpl_record"})
ON CREATE SET c.value = 0
SET c.value = c.value + 1
CREATE (r:BnplRecord)
SET r = $props, r.recordId = c.value
MERGE (u)-[:OWES]->(r)
MERGE (v:Vendor {name: $vendor})
MERGE (r)-[:FROM_VENDOR]->(v)
RETURN r.recordId AS recordId, r.createdAt AS createdAt
`

const setStatusCypher = `
MATCH (r:BnplRecord {recordId: $recordId, userEmail: $userEmail})
SET r.status = $status
RETURN r.recordId AS recordId
`

const clearRecordsCypher = `
OPTIONAL MATCH (r:BnplRecord {userEmail: $userEmail})
WITH collect(r) AS records
FOREACH (rec IN records | DETACH DELETE rec)
RETURN size(records) AS deleted
`

const profileProjection = `
RETURN u.email AS email,
       u.fullName AS fullName,
       u.salary AS salary,
       u.monthlyRent AS monthlyRent,
       u.otherExpenses AS otherExpenses,
       u.city AS city,
       u.existingLoans AS existingLoans,
       u.profileCreatedAt AS createdAt
`

// Users created implicitly by InsertRecord have no profileCreatedAt and do
// not count as saved profiles.
const getProfileCypher = `
MATCH (u:User {email: $email})
WHERE u.profileCreatedAt IS NOT NULL
` + profileProjection

const upsertProfileCypher = `
MERGE (u:User {email: $email})
SET u += $props,
    u.profileCreatedAt = coalesce(u.profileCreatedAt, $now)
` + profileProjection

const updateSalaryCypher = `
MERGE (u:User {email: $email})
SET u.salary = $salary,
    u.monthlyRent = coalesce(u.monthlyRent, "0"),
    u.otherExpenses = coalesce(u.otherExpenses, "0"),
    u.existingLoans = coalesce(u.existingLoans, "0"),
    u.profileCreatedAt = coalesce(u.profileCreatedAt, $now)
`

const getSalaryCypher = `
MATCH (u:User {email: $email})
WHERE u.profileCreatedAt IS NOT NULL
RETURN u.salary AS salary
`
