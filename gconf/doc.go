/*

Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension declares its own configuration entity. A configuration is
stored in the database as a singleton, keyed by the package name. Use
InitConfig inside of your extension initializer to load the configuration
from the genesis and Load to access it at runtime.

A configuration can be updated at runtime by processing an update message
with the UpdateConfigurationHandler. Every update must be authorized by the
owner declared in the currently stored configuration.

*/
package gconf
