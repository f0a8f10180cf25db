package providers

// dryRunPayload is what every provider returns in DRY_RUN mode: a small but
// fully well-formed batch, so the rest of the pipeline can run without
// spending API budget.
const dryRunPayload = `{"questions":[
  {"question":"Which layer of the OSI model does TCP operate at?",
   "possibleAnswers":["Transport","Network","Session","Data link"],
   "correctAnswer":[0],
   "explanation":"TCP is a transport-layer protocol.",
   "difficulty":3,"topic":"networking"},
  {"question":"Which of these are NoSQL databases?",
   "possibleAnswers":["MongoDB","PostgreSQL","Redis","MySQL"],
   "correctAnswer":[0,2],
   "explanation":"MongoDB and Redis are non-relational stores.",
   "difficulty":4,"topic":"databases"}
]}`
