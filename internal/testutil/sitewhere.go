// SPDX-License-Identifier: MPL-2.0

package testutil

import "testing"

// Channels declared by the SiteWhereTree naming class, in declaration order.
const (
	ChannelDecodedEvents      = "event-source-decoded-events"
	ChannelPersistedEvents    = "inbound-persisted-events"
	ChannelDeviceRegistration = "device-registration-events"
	ChannelCommandInvocations = "command-invocations"
)

// SiteWhereServices are the services present in SiteWhereTree.
var SiteWhereServices = []string{
	"event sources",
	"inbound processing",
	"outbound connectors",
	"device registration",
	"command delivery",
}

// SiteWhereFiles is a reduced SiteWhere checkout. The expected topology is:
//
//	event-source-decoded-events: event sources -> inbound processing
//	inbound-persisted-events:    inbound processing -> outbound connectors
//	device-registration-events:  event sources -> device registration
//	command-invocations:         consumed by command delivery only
var SiteWhereFiles = map[string]string{
	"sitewhere-microservice/src/main/java/com/sitewhere/microservice/kafka/KafkaTopicNaming.java": `package com.sitewhere.microservice.kafka;

public class KafkaTopicNaming {
    protected static final String SEPARATOR = "-";
    protected static final String TOPIC_EVENT_SOURCE_DECODED_EVENTS = "event-source-decoded-events";
    protected static final String TOPIC_INBOUND_PERSISTED_EVENTS = "inbound" + SEPARATOR + "persisted-events";
    protected static final String TOPIC_DEVICE_REGISTRATION_EVENTS = "device-registration-events";
    protected static final String TOPIC_COMMAND_INVOCATIONS = "command-invocations";
    protected static final int TOPIC_PARTITIONS = 8;
}
`,
	"sitewhere-microservice/src/main/java/com/sitewhere/microservice/kafka/MicroserviceKafkaProducer.java": `package com.sitewhere.microservice.kafka;

import org.apache.kafka.clients.producer.KafkaProducer;

public abstract class MicroserviceKafkaProducer {
    private KafkaProducer<String, byte[]> producer;
}
`,
	"sitewhere-microservice/src/main/java/com/sitewhere/microservice/kafka/MicroserviceKafkaConsumer.java": `package com.sitewhere.microservice.kafka;

import org.apache.kafka.clients.consumer.KafkaConsumer;

public abstract class MicroserviceKafkaConsumer {
    private KafkaConsumer<String, byte[]> consumer;
}
`,
	"service-event-sources/src/main/java/com/sitewhere/sources/kafka/DecodedEventsProducer.java": `package com.sitewhere.sources.kafka;

import com.sitewhere.microservice.kafka.MicroserviceKafkaProducer;

public class DecodedEventsProducer extends MicroserviceKafkaProducer {
}
`,
	"service-event-sources/src/main/java/com/sitewhere/sources/kafka/DeviceRegistrationEventsProducer.java": `package com.sitewhere.sources.kafka;

import com.sitewhere.microservice.kafka.*;

public class DeviceRegistrationEventsProducer extends MicroserviceKafkaProducer {
}
`,
	"service-inbound-processing/src/main/java/com/sitewhere/inbound/kafka/DecodedEventsConsumer.java": `package com.sitewhere.inbound.kafka;

import com.sitewhere.microservice.kafka.MicroserviceKafkaConsumer;

public class DecodedEventsConsumer extends MicroserviceKafkaConsumer {
}
`,
	"service-inbound-processing/src/main/java/com/sitewhere/inbound/kafka/PersistedEventsProducer.java": `package com.sitewhere.inbound.kafka;

import com.sitewhere.microservice.kafka.MicroserviceKafkaProducer;

public class PersistedEventsProducer extends MicroserviceKafkaProducer {
}
`,
	"service-outbound-connectors/src/main/java/com/sitewhere/connectors/kafka/PersistedEventsConsumer.java": `package com.sitewhere.connectors.kafka;

import com.sitewhere.microservice.kafka.MicroserviceKafkaConsumer;

public class PersistedEventsConsumer extends MicroserviceKafkaConsumer {
}
`,
	"service-device-registration/src/main/java/com/sitewhere/registration/kafka/KafkaDeviceRegistrationConsumer.java": `package com.sitewhere.registration.kafka;

import org.apache.kafka.clients.consumer.KafkaConsumer;

public class KafkaDeviceRegistrationConsumer {
    private KafkaConsumer<String, byte[]> consumer;
}
`,
	"service-device-registration/src/main/java/com/sitewhere/registration/kafka/processing/RegistrationHelper.java": `package com.sitewhere.registration.kafka.processing;

public class RegistrationHelper {
}
`,
	"service-device-registration/src/main/java/com/sitewhere/registration/kafka/processing/deep/UnreachableEventsProducer.java": `package com.sitewhere.registration.kafka.processing.deep;

import org.apache.kafka.clients.producer.KafkaProducer;

public class UnreachableEventsProducer {
    private KafkaProducer<String, byte[]> producer;
}
`,
	"service-device-registration/src/main/java/com/sitewhere/registration/kafka/README.md": "not a source file\n",
	"service-command-delivery/src/main/java/com/sitewhere/commands/kafka/CommandInvocationsConsumer.java": `package com.sitewhere.commands.kafka;

import com.sitewhere.microservice.kafka.MicroserviceKafkaConsumer;

public class CommandInvocationsConsumer extends MicroserviceKafkaConsumer {
}
`,
	"service-command-delivery/src/main/java/com/sitewhere/commands/spi/kafka/IEnrichedCommandInvocationsConsumer.java": `package com.sitewhere.commands.spi.kafka;

public interface IEnrichedCommandInvocationsConsumer {
}
`,
}

// SiteWhereTree writes SiteWhereFiles to a fresh temporary directory and
// returns its path.
func SiteWhereTree(t testing.TB) string {
	t.Helper()
	root := t.TempDir()
	WriteTree(t, root, SiteWhereFiles)
	return root
}
