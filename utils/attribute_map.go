package utils

// AttributeMap is a free-form set of attributes, usually straight from a JSON object.
type AttributeMap map[string]interface{}
