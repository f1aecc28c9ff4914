package domain

// KeyPrefix namespaces every key this service writes to the session store.
const KeyPrefix = "plasmidq:"
